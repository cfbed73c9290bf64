package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"addrbook/internal/addrbook"
	"addrbook/internal/addressparse"
	"addrbook/internal/config"
)

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Name")
	cmd.Flags().String("street", "", "Street")
	cmd.Flags().String("number", "", "House number")
	cmd.Flags().String("postcode", "", "Postal code")
	cmd.Flags().String("city", "", "City")
	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lon", 0, "Longitude")
	cmd.Flags().StringP("category", "c", "", "Category (business unit)")
}

// inputFromFlags builds the fields of a new address. Coordinates and
// category are only set when their flag was given. The name is stored as
// typed unless --format-name asks for the "Last, I. infix (First)" rewrite.
func inputFromFlags(cmd *cobra.Command) (addrbook.AddressInput, error) {
	fs := cmd.Flags()
	var in addrbook.AddressInput
	in.Name, _ = fs.GetString("name")
	in.Street, _ = fs.GetString("street")
	in.HouseNumber, _ = fs.GetString("number")
	in.PostalCode, _ = fs.GetString("postcode")
	in.City, _ = fs.GetString("city")
	if fs.Lookup("format-name") != nil {
		if on, _ := fs.GetBool("format-name"); on {
			in.Name = addressparse.FormatName(in.Name)
		}
	}

	if fs.Changed("lat") != fs.Changed("lon") {
		return addrbook.AddressInput{}, fmt.Errorf("--lat and --lon must be given together")
	}
	if fs.Changed("lat") {
		lat, _ := fs.GetFloat64("lat")
		lon, _ := fs.GetFloat64("lon")
		in.Latitude = &lat
		in.Longitude = &lon
	}
	if fs.Changed("category") {
		c, _ := fs.GetString("category")
		in.Category = &c
	}
	return in, nil
}

// patchFromFlags builds a patch from --json and the record flags. Flags
// override keys of the JSON patch; flags that were not given leave the
// field untouched.
func patchFromFlags(cmd *cobra.Command) (addrbook.AddressPatch, error) {
	fs := cmd.Flags()
	var patch addrbook.AddressPatch

	if raw, _ := fs.GetString("json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &patch); err != nil {
			return addrbook.AddressPatch{}, fmt.Errorf("parsing --json: %w", err)
		}
	}

	setString(fs, "name", &patch.Name)
	setString(fs, "street", &patch.Street)
	setString(fs, "number", &patch.HouseNumber)
	setString(fs, "postcode", &patch.PostalCode)
	setString(fs, "city", &patch.City)

	if fs.Changed("lat") {
		v, _ := fs.GetFloat64("lat")
		patch.Latitude = addrbook.SetTo(v)
	}
	if fs.Changed("lon") {
		v, _ := fs.GetFloat64("lon")
		patch.Longitude = addrbook.SetTo(v)
	}
	if fs.Changed("category") {
		v, _ := fs.GetString("category")
		patch.Category = addrbook.SetTo(v)
	}

	if clearCat, _ := fs.GetBool("clear-category"); clearCat {
		if fs.Changed("category") {
			return addrbook.AddressPatch{}, fmt.Errorf("--category and --clear-category are mutually exclusive")
		}
		patch.Category = addrbook.Clear[string]()
	}
	if clearCoords, _ := fs.GetBool("clear-coordinates"); clearCoords {
		if fs.Changed("lat") || fs.Changed("lon") {
			return addrbook.AddressPatch{}, fmt.Errorf("--lat/--lon and --clear-coordinates are mutually exclusive")
		}
		patch.Latitude = addrbook.Clear[float64]()
		patch.Longitude = addrbook.Clear[float64]()
	}
	return patch, nil
}

func setString(fs *pflag.FlagSet, name string, dst **string) {
	if !fs.Changed(name) {
		return
	}
	v, _ := fs.GetString(name)
	*dst = &v
}

// applySlotType sets the slot type and its default location under BaseDir.
func applySlotType(cfg *config.Config, slotType string) error {
	switch slotType {
	case "", "filesystem":
		cfg.Slot.Type = "filesystem"
	case "memory":
		cfg.Slot.Type = "memory"
		cfg.Slot.FSDir = ""
	case "sqlite":
		cfg.Slot.Type = "sqlite"
		cfg.Slot.FSDir = ""
		cfg.Slot.SQLitePath = filepath.Join(cfg.BaseDir, "addrbook.db")
	case "s3":
		// bucket and region are filled in by editing the config file
		cfg.Slot.Type = "s3"
		cfg.Slot.FSDir = ""
	default:
		return fmt.Errorf("unknown slot type: %s", slotType)
	}
	return nil
}

func slotLocation(s config.SlotConfig) string {
	switch s.Type {
	case "filesystem":
		return s.FSDir
	case "sqlite":
		return s.SQLitePath
	case "s3":
		return "s3://" + s.S3Bucket + "/" + s.S3Prefix
	default:
		return s.Name
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
