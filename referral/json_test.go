package referral

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteLinksJSONRoundTrips(t *testing.T) {
	links := LinkMap{"abc123": "https://example.com/product/1"}
	var buf bytes.Buffer
	if err := WriteLinksJSON(&buf, links, Meta{Date: "2026-08-06", Version: "1.0.0"}); err != nil {
		t.Fatalf("WriteLinksJSON: %v", err)
	}

	var decoded struct {
		Meta Meta    `json:"meta"`
		Data LinkMap `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Meta.Version != "1.0.0" {
		t.Fatalf("unexpected meta: %+v", decoded.Meta)
	}
	if decoded.Data["abc123"] != "https://example.com/product/1" {
		t.Fatalf("unexpected data: %+v", decoded.Data)
	}
}
