package addrbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Origin tags where a record in a merged view came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginShared Origin = "shared"
)

// AddressRecord is a single address. The JSON keys match the format written by
// earlier versions of the address book and by the shared catalog converter, so
// existing slots and published catalogs decode unchanged.
type AddressRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"naam" yaml:"naam"`
	Street      string    `json:"straat" yaml:"straat"`
	HouseNumber string    `json:"huisnummer" yaml:"huisnummer"`
	PostalCode  string    `json:"postcode" yaml:"postcode"`
	City        string    `json:"plaats" yaml:"plaats"`
	Latitude    *float64  `json:"latitude" yaml:"latitude"`
	Longitude   *float64  `json:"longitude" yaml:"longitude"`
	Category    *string   `json:"bu,omitempty" yaml:"bu,omitempty"`
	CreatedAt   time.Time `json:"toegevoegdOp" yaml:"toegevoegdOp"`

	// Origin is only set on views and fetched records; it is never persisted
	// for local records.
	Origin Origin `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r AddressRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// CategoryName returns the category or "" when absent.
func (r AddressRecord) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}

// clone returns a copy that shares no pointers with r.
func (r AddressRecord) clone() AddressRecord {
	c := r
	c.Latitude = copyPtr(r.Latitude)
	c.Longitude = copyPtr(r.Longitude)
	c.Category = copyPtr(r.Category)
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// AddressInput holds the caller-supplied fields for a new record.
// Zero values are the documented defaults: text fields default to "",
// coordinates and category default to absent.
type AddressInput struct {
	Name        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Latitude    *float64
	Longitude   *float64
	Category    *string
}

// newRecord is the fill-defaults step for records created by Add.
//   - ID and CreatedAt are assigned here and never change afterwards.
//   - Name, Street, HouseNumber, PostalCode, City copy the input, "" when unset.
//   - Latitude, Longitude, Category copy the input, nil when unset.
//   - Origin stays empty; it is attached by views only.
func newRecord(id string, createdAt time.Time, in AddressInput) AddressRecord {
	return AddressRecord{
		ID:          id,
		Name:        in.Name,
		Street:      in.Street,
		HouseNumber: in.HouseNumber,
		PostalCode:  in.PostalCode,
		City:        in.City,
		Latitude:    copyPtr(in.Latitude),
		Longitude:   copyPtr(in.Longitude),
		Category:    copyPtr(in.Category),
		CreatedAt:   createdAt,
	}
}

// Nullable is a patch value for an optional attribute. The zero value leaves
// the attribute untouched; Set with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that assigns v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Clear returns a Nullable that removes the attribute.
func Clear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// AddressPatch is a partial update. Nil pointer fields are absent and leave the
// record unchanged. ID and CreatedAt are accepted so whole records can be
// passed through, but Update always ignores them.
type AddressPatch struct {
	ID        *string
	CreatedAt *time.Time

	Name        *string
	Street      *string
	HouseNumber *string
	PostalCode  *string
	City        *string
	Latitude    Nullable[float64]
	Longitude   Nullable[float64]
	Category    Nullable[string]
}

// apply shallow-merges p over r. Protected fields are never touched.
func (p AddressPatch) apply(r AddressRecord) AddressRecord {
	out := r.clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Street != nil {
		out.Street = *p.Street
	}
	if p.HouseNumber != nil {
		out.HouseNumber = *p.HouseNumber
	}
	if p.PostalCode != nil {
		out.PostalCode = *p.PostalCode
	}
	if p.City != nil {
		out.City = *p.City
	}
	if p.Latitude.Set {
		out.Latitude = copyPtr(p.Latitude.Value)
	}
	if p.Longitude.Set {
		out.Longitude = copyPtr(p.Longitude.Value)
	}
	if p.Category.Set {
		out.Category = copyPtr(p.Category.Value)
	}
	return out
}

// UnmarshalJSON decodes a patch from an object using the record's wire keys.
// A key that is present overwrites; null clears latitude, longitude and bu and
// is ignored for text fields. The protected keys id and toegevoegdOp are
// skipped without looking at their values, as are unknown keys.
func (p *AddressPatch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding address patch: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("decoding address patch: %w", ErrNotObject)
	}

	var out AddressPatch
	text := []struct {
		key string
		dst **string
	}{
		{"naam", &out.Name},
		{"straat", &out.Street},
		{"huisnummer", &out.HouseNumber},
		{"postcode", &out.PostalCode},
		{"plaats", &out.City},
	}
	for _, f := range text {
		raw, ok := fields[f.key]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decoding %q: %w", f.key, err)
		}
		*f.dst = &s
	}

	var err error
	if out.Latitude, err = decodeNullable[float64](fields, "latitude"); err != nil {
		return err
	}
	if out.Longitude, err = decodeNullable[float64](fields, "longitude"); err != nil {
		return err
	}
	if out.Category, err = decodeNullable[string](fields, "bu"); err != nil {
		return err
	}

	*p = out
	return nil
}

func decodeNullable[T any](fields map[string]json.RawMessage, key string) (Nullable[T], error) {
	raw, ok := fields[key]
	if !ok {
		return Nullable[T]{}, nil
	}
	if isNull(raw) {
		return Clear[T](), nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Nullable[T]{}, fmt.Errorf("decoding %q: %w", key, err)
	}
	return SetTo(v), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
