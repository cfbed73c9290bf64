package addrbook

import "strings"

// DefaultCountry is appended to full address strings unless configured otherwise.
const DefaultCountry = "Nederland"

// FullAddress joins the non-empty street, house number, postal code and city
// with single spaces and appends ", <country>". Empty fields leave no
// separator behind; with no fields at all only the country is returned.
func FullAddress(r AddressRecord, country string) string {
	line := joinNonEmpty(r.Street, r.HouseNumber, r.PostalCode, r.City)
	switch {
	case country == "":
		return line
	case line == "":
		return country
	default:
		return line + ", " + country
	}
}

// DisplayAddress joins the non-empty postal code and city.
func DisplayAddress(r AddressRecord) string {
	return joinNonEmpty(r.PostalCode, r.City)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
