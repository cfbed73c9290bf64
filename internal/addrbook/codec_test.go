package addrbook_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"addrbook/internal/addrbook"
)

func TestDecodeCollection(t *testing.T) {
	t.Parallel()

	data := `[
		{"id":"1","naam":"Office","straat":"Main","huisnummer":"5","postcode":"1000AB","plaats":"Town",
		 "latitude":52.1,"longitude":null,"bu":"Ops","toegevoegdOp":"2024-01-15T10:30:00Z"},
		{"id":"2"}
	]`

	got, err := addrbook.DecodeCollection([]byte(data))
	if err != nil {
		t.Fatalf("DecodeCollection() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("DecodeCollection() returned %d records, want 2", len(got))
	}

	r := got[0]
	if r.Name != "Office" || r.Street != "Main" || r.HouseNumber != "5" || r.PostalCode != "1000AB" || r.City != "Town" {
		t.Errorf("record = %+v", r)
	}
	if r.Latitude == nil || *r.Latitude != 52.1 || r.Longitude != nil {
		t.Errorf("coordinates = %v, %v", r.Latitude, r.Longitude)
	}
	if r.CategoryName() != "Ops" {
		t.Errorf("Category = %q, want Ops", r.CategoryName())
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !r.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, want)
	}
	if got[1].Category != nil || !got[1].CreatedAt.IsZero() {
		t.Errorf("missing fields should stay at zero values: %+v", got[1])
	}
}

func TestDecodeCollection_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		wantIs error
	}{
		{"empty", ``, addrbook.ErrNotArray},
		{"object", `{"id":"1"}`, addrbook.ErrNotArray},
		{"string", `"x"`, addrbook.ErrNotArray},
		{"null", `null`, addrbook.ErrNotArray},
		{"invalid", `not json`, nil},
		{"scalar element", `[{"id":"1"}, 2]`, addrbook.ErrNotObject},
		{"null element", `[null]`, addrbook.ErrNotObject},
		{"truncated", `[{"id":"1"}`, nil},
		{"wrong field type", `[{"id":1}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := addrbook.DecodeCollection([]byte(tt.input))
			if err == nil {
				t.Fatalf("DecodeCollection(%q) expected error", tt.input)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestDecodeCollection_SyntaxErrorPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"not json", `not json`},
		{"broken object", `{"id": }`},
		{"broken array", `[{"id":"1"},]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := addrbook.DecodeCollection([]byte(tt.input))
			var syntaxErr *json.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("DecodeCollection(%q) error = %v, want *json.SyntaxError", tt.input, err)
			}
			if syntaxErr.Offset == 0 {
				t.Errorf("Offset = 0, want the position of the break")
			}
		})
	}
}

func TestEncodeCollection(t *testing.T) {
	t.Parallel()

	data, err := addrbook.EncodeCollection(nil)
	if err != nil {
		t.Fatalf("EncodeCollection(nil) error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeCollection(nil) = %s, want []", data)
	}

	lat := 52.1
	data, err = addrbook.EncodeCollection([]addrbook.AddressRecord{{ID: "1", Name: "Office", Latitude: &lat}})
	if err != nil {
		t.Fatalf("EncodeCollection() error = %v", err)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not an array of objects: %v", err)
	}
	obj := raw[0]
	for _, key := range []string{"id", "naam", "straat", "huisnummer", "postcode", "plaats", "latitude", "longitude", "toegevoegdOp"} {
		if _, ok := obj[key]; !ok {
			t.Errorf("key %q missing from %s", key, data)
		}
	}
	for _, key := range []string{"bu", "source"} {
		if _, ok := obj[key]; ok {
			t.Errorf("key %q should be omitted when empty: %s", key, data)
		}
	}
	if !strings.Contains(string(obj["longitude"]), "null") {
		t.Errorf("longitude = %s, want null", obj["longitude"])
	}
}
