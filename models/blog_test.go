package models

import (
	"encoding/json"
	"testing"
)

func TestFileRefZeroValueIsNull(t *testing.T) {
	var ref FileRef

	// Unset reference serializes as JSON null and stores as SQL NULL.
	b, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("expected null, got %s", b)
	}

	v, err := ref.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Fatalf("expected NULL column value, got %v", v)
	}

	// Scanning a NULL column leaves the reference unset.
	if err := ref.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !ref.IsZero() {
		t.Fatalf("expected zero ref after NULL scan: %+v", ref)
	}
}

func TestFileRefColumnRoundTrip(t *testing.T) {
	ref := FileRef{URL: "https://cdn/x.png", Name: "x.png"}

	v, err := ref.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var back FileRef
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if back != ref {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestTagListScanAcceptsBytesAndString(t *testing.T) {
	var fromBytes TagList
	if err := fromBytes.Scan([]byte(`["go","web"]`)); err != nil {
		t.Fatalf("Scan bytes: %v", err)
	}
	if len(fromBytes) != 2 || fromBytes[0] != "go" {
		t.Fatalf("from bytes: %v", fromBytes)
	}

	var fromString TagList
	if err := fromString.Scan(`["go"]`); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if len(fromString) != 1 {
		t.Fatalf("from string: %v", fromString)
	}

	var fromInt TagList
	if err := fromInt.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
}

func TestTagListContains(t *testing.T) {
	tags := TagList{"go", "web"}
	if !tags.Contains("go") {
		t.Fatalf("expected go to be present")
	}
	if tags.Contains("rust") {
		t.Fatalf("rust must not be present")
	}
}
