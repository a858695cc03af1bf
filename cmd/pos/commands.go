package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/domain"
)

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "pos",
		Short:         "Venezia cashier register",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// with runs fn against a freshly opened register and closes it afterwards.
	with := func(fn func(ctx context.Context, a *app, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, a, cmd.OutOrStdout(), args)
		}
	}

	root.AddCommand(
		searchCmd(with),
		addCmd(with),
		&cobra.Command{
			Use:   "remove <line-id>",
			Short: "Remove a line from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: with(func(_ context.Context, a *app, out io.Writer, args []string) error {
				a.cart.RemoveItem(args[0])
				printCart(out, a.cart.Snapshot())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "qty <line-id> <qty>",
			Short: "Change the quantity of a line",
			Args:  cobra.ExactArgs(2),
			RunE: with(func(_ context.Context, a *app, out io.Writer, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("qty must be a number: %w", err)
				}
				a.cart.SetQty(args[0], qty)
				printCart(out, a.cart.Snapshot())
				return nil
			}),
		},
		codeCmd(with),
		&cobra.Command{
			Use:   "show",
			Short: "Print the current cart",
			Args:  cobra.NoArgs,
			RunE: with(func(_ context.Context, a *app, out io.Writer, _ []string) error {
				printCart(out, a.cart.Snapshot())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "cancel",
			Short: "Discard the sale in progress",
			Args:  cobra.NoArgs,
			RunE: with(func(_ context.Context, a *app, out io.Writer, _ []string) error {
				a.register.Cancel()
				fmt.Fprintln(out, "sale cancelled")
				return nil
			}),
		},
		confirmCmd(with),
		queueCmd(with),
	)
	return root
}

type runner = func(fn func(ctx context.Context, a *app, out io.Writer, args []string) error) func(*cobra.Command, []string) error

func searchCmd(with runner) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the product catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: with(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			res, err := a.register.Search(ctx, catalog.Query{Search: strings.Join(args, " "), Page: page, PageSize: size})
			if err != nil {
				return err
			}
			for _, p := range res.Items {
				fmt.Fprintf(out, "%6d  %-30s %10s  %s\n", p.ID, p.Name, "$"+p.Price.StringFixed(2), p.Type)
			}
			fmt.Fprintf(out, "page %d, %d of %d products\n", res.Page, len(res.Items), res.Total)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", catalog.DefaultPageSize, "page size")
	return cmd
}

func addCmd(with runner) *cobra.Command {
	var (
		qty  int
		meta []string
	)
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("product id must be a number: %w", err)
			}
			m, err := parseMeta(meta)
			if err != nil {
				return err
			}
			if _, err := a.register.Add(ctx, id, qty, m); err != nil {
				return err
			}
			printCart(out, a.cart.Snapshot())
			return nil
		}),
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "line attribute as key=value, repeatable")
	return cmd
}

func codeCmd(with runner) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "code [code]",
		Short: "Apply or remove a discount code",
		Args:  cobra.MaximumNArgs(1),
		RunE: with(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			if remove {
				a.cart.RemoveCode()
				printCart(out, a.cart.Snapshot())
				return nil
			}
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			if _, err := a.register.ApplyCode(ctx, code); err != nil {
				return err
			}
			printCart(out, a.cart.Snapshot())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the applied code")
	return cmd
}

func confirmCmd(with runner) *cobra.Command {
	var pay string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Submit the sale and print the ticket",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, out io.Writer, _ []string) error {
			res, err := a.register.Confirm(ctx, pay)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, a.renderer.Render(res.Ticket))
			if res.Queued {
				fmt.Fprintf(out, "backend unreachable, sale queued as %s (%d pending)\n", res.Entry.ID, a.queue.Size(ctx))
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&pay, "pay", "p", "cash", "payment method: cash, card, transfer, mercadopago")
	return cmd
}

func queueCmd(with runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and flush sales waiting for the backend",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List queued sales, oldest first",
			Args:  cobra.NoArgs,
			RunE: with(func(ctx context.Context, a *app, out io.Writer, _ []string) error {
				for _, e := range a.queue.Entries(ctx) {
					fmt.Fprintf(out, "%s  %s  total=%s  attempts=%d  %s\n",
						e.ID, e.TS.Local().Format("2006-01-02 15:04"), e.Payload.Total.StringFixed(2), e.Attempts, e.LastError)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "size",
			Short: "Print how many sales are queued",
			Args:  cobra.NoArgs,
			RunE: with(func(ctx context.Context, a *app, out io.Writer, _ []string) error {
				fmt.Fprintln(out, a.queue.Size(ctx))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "retry",
			Short: "Resubmit every queued sale once",
			Args:  cobra.NoArgs,
			RunE: with(func(ctx context.Context, a *app, out io.Writer, _ []string) error {
				res, err := a.register.Flush(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "sent %d, remaining %d\n", res.Sent, res.Remaining)
				if !res.Success {
					return errors.New("some sales are still queued")
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "discard <entry-id>",
			Short: "Drop a queued sale that will never be accepted",
			Args:  cobra.ExactArgs(1),
			RunE: with(func(ctx context.Context, a *app, out io.Writer, args []string) error {
				if err := a.queue.Discard(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out, "discarded", args[0])
				return nil
			}),
		},
	)
	return cmd
}

func parseMeta(pairs []string) (domain.Meta, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(domain.Meta, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("meta %q must be key=value", p)
		}
		m[k] = strings.TrimSpace(v)
	}
	return m, nil
}

func printCart(out io.Writer, s domain.CartState) {
	if s.Empty() {
		fmt.Fprintln(out, "cart is empty")
	}
	for _, it := range s.Items {
		marker := " "
		if it.ID == s.SelectedItemID {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %s  %d x %-24s %10s\n", marker, it.ID, it.Qty, it.Name, "$"+it.LineTotal().StringFixed(2))
		for _, k := range slices.Sorted(maps.Keys(it.Meta)) {
			fmt.Fprintf(out, "      %s: %s\n", k, it.Meta[k])
		}
	}
	fmt.Fprintf(out, "subtotal %s\n", "$"+s.Subtotal.StringFixed(2))
	if s.Code != "" {
		fmt.Fprintf(out, "discount %s (%s)\n", "-$"+s.Discount.StringFixed(2), s.Code)
	}
	fmt.Fprintf(out, "total    %s\n", "$"+s.Total.StringFixed(2))
}
