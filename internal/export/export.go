// Package export writes address collections in formats other tools read.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"addrbook/internal/addrbook"
)

// Formats lists the names accepted by Write.
var Formats = []string{"json", "yaml", "geojson"}

// Write dispatches on format name. country is used for the full address
// property of GeoJSON features.
func Write(w io.Writer, format string, records []addrbook.AddressRecord, country string) error {
	switch format {
	case "json":
		return WriteJSON(w, records)
	case "yaml":
		return WriteYAML(w, records)
	case "geojson":
		return WriteGeoJSON(w, records, country)
	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}

// WriteJSON writes records as an indented JSON array using the catalog keys,
// so the output can be published as a shared catalog.
func WriteJSON(w io.Writer, records []addrbook.AddressRecord) error {
	if records == nil {
		records = []addrbook.AddressRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteYAML writes records as a YAML sequence with the same keys as JSON.
func WriteYAML(w io.Writer, records []addrbook.AddressRecord) error {
	if records == nil {
		records = []addrbook.AddressRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// FeatureCollection converts records with both coordinates into point
// features. Records without coordinates are skipped.
func FeatureCollection(records []addrbook.AddressRecord, country string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Longitude, *r.Latitude})
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		f.Properties["fullAddress"] = addrbook.FullAddress(r, country)
		f.Properties["displayAddress"] = addrbook.DisplayAddress(r)
		if r.Category != nil {
			f.Properties["category"] = *r.Category
		}
		if r.Origin != "" {
			f.Properties["origin"] = string(r.Origin)
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes a FeatureCollection of the records that have coordinates.
func WriteGeoJSON(w io.Writer, records []addrbook.AddressRecord, country string) error {
	data, err := FeatureCollection(records, country).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}
	return nil
}
