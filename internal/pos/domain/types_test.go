package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMetaEqual(t *testing.T) {
	cases := []struct {
		a, b Meta
		want bool
	}{
		{nil, Meta{}, true},
		{Meta{"sabor": "limon", "formato": "cuarto"}, Meta{"formato": "cuarto", "sabor": "limon"}, true},
		{Meta{"sabor": "limon"}, Meta{"sabor": "frutilla"}, false},
		{Meta{"sabor": "limon"}, Meta{"sabor": "limon", "cono": "si"}, false},
		{Meta{"sabor": ""}, Meta{"cono": ""}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Fatalf("%v.Equal(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCartStateCloneIsDeep(t *testing.T) {
	v := decimal.NewFromInt(10)
	amt := decimal.NewFromInt(500)
	exp := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
	store := int64(3)
	s := CartState{
		Items: []CartItem{{ID: "a", Qty: 1, Meta: Meta{"sabor": "limon"}}},
		CodeInfo: &CodeInfo{
			Code: "X", DiscountValue: &v, DiscountAmount: &amt,
			ExpiresAt: &exp, StoreID: &store,
		},
	}
	c := s.Clone()
	c.Items[0].Qty = 5
	c.Items[0].Meta["sabor"] = "menta"
	c.CodeInfo.Code = "Y"
	*c.CodeInfo.DiscountValue = decimal.NewFromInt(99)
	*c.CodeInfo.DiscountAmount = decimal.Zero
	*c.CodeInfo.ExpiresAt = exp.Add(-48 * time.Hour)
	*c.CodeInfo.StoreID = 7

	if s.Items[0].Qty != 1 || s.Items[0].Meta["sabor"] != "limon" || s.CodeInfo.Code != "X" {
		t.Fatalf("clone shares state with original: %+v", s)
	}
	info := s.CodeInfo
	if !info.DiscountValue.Equal(decimal.NewFromInt(10)) || !info.DiscountAmount.Equal(decimal.NewFromInt(500)) ||
		!info.ExpiresAt.Equal(exp) || *info.StoreID != 3 {
		t.Fatalf("clone shares code info pointers with original: %+v", *info)
	}
}

func TestCodeInfoCloneNil(t *testing.T) {
	var c *CodeInfo
	if c.Clone() != nil {
		t.Fatal("nil code info should clone to nil")
	}
}
