package jsoncodec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

type sample struct {
	Code  string `json:"code"`
	Store int64  `json:"store_id"`
}

func TestRegistered(t *testing.T) {
	if encoding.GetCodec(Name) == nil {
		t.Fatal("json codec not registered")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	c := codec{}
	raw, err := c.Marshal(&sample{Code: "VERANO10", Store: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"code":"VERANO10","store_id":3}` {
		t.Fatalf("unexpected wire form %s", raw)
	}

	var out sample
	if err := c.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Code != "VERANO10" || out.Store != 3 {
		t.Fatalf("unexpected decode %+v", out)
	}
}
