// Package addressparse splits free-form Dutch address strings and personnel
// names into the fields of an address record.
package addressparse

import (
	"regexp"
	"strings"
)

// Components holds the parts recognised in a full address string. Parts that
// could not be recognised are empty.
type Components struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

var (
	postalCodeRe  = regexp.MustCompile(`(?i)\b(\d{4})\s*([a-z]{2})\b`)
	houseSuffixRe = regexp.MustCompile(`(?i)\s+(\d+[a-z]?)(?:\s+([a-z]+))?\s*$`)
)

// ParseAddress splits "Street 12 b, 1234 AB City" into its components.
// The postal code is normalised to "1234 AB". Everything after the postal
// code is the city; the trailing number (with an optional letter or
// separate suffix word) before it is the house number.
func ParseAddress(s string) Components {
	s = strings.TrimSpace(s)
	if s == "" {
		return Components{}
	}

	var c Components
	rest := s
	if loc := postalCodeRe.FindStringSubmatchIndex(s); loc != nil {
		c.PostalCode = s[loc[2]:loc[3]] + " " + strings.ToUpper(s[loc[4]:loc[5]])
		c.City = strings.TrimSpace(strings.TrimLeft(s[loc[1]:], ", "))
		rest = strings.TrimSpace(s[:loc[0]])
	}
	rest = strings.TrimSpace(strings.TrimRight(rest, ","))

	if m := houseSuffixRe.FindStringSubmatchIndex(rest); m != nil {
		c.HouseNumber = rest[m[2]:m[3]]
		if m[4] >= 0 {
			c.HouseNumber += " " + rest[m[4]:m[5]]
		}
		c.Street = strings.TrimSpace(rest[:m[0]])
	} else {
		c.Street = rest
	}
	return c
}

var (
	parenNameRe = regexp.MustCompile(`\(([^)]+)\)`)
	nonWordRe   = regexp.MustCompile(`[^\p{L}\p{N}_]`)
)

var infixes = map[string]bool{
	"van": true,
	"de":  true,
	"den": true,
	"der": true,
	"ten": true,
	"ter": true,
}

// FormatName turns a personnel-system name such as
// "Rietschoten, T.A.J. van (Tijn)" into "Tijn van Rietschoten". Names without
// a parenthesised first name are returned trimmed but otherwise unchanged.
func FormatName(s string) string {
	name := strings.TrimSpace(s)
	loc := parenNameRe.FindStringSubmatchIndex(name)
	if loc == nil {
		return name
	}

	first := strings.TrimSpace(name[loc[2]:loc[3]])
	before := strings.TrimSpace(name[:loc[0]])

	var surname, infix string
	if last, rest, ok := strings.Cut(before, ","); ok {
		surname = strings.TrimSpace(last)
		infix = findInfix(strings.Fields(rest))
	} else if words := strings.Fields(before); len(words) > 0 {
		surname = words[0]
	}

	parts := []string{first}
	if infix != "" {
		parts = append(parts, infix)
	}
	if surname != "" {
		parts = append(parts, surname)
	}
	return strings.Join(parts, " ")
}

// findInfix returns the last tussenvoegsel among words, stopping at the first
// "van der", "van de" or "van den" pair.
func findInfix(words []string) string {
	var found string
	for i, w := range words {
		clean := cleanWord(w)
		if !infixes[clean] {
			continue
		}
		if clean == "van" && i+1 < len(words) {
			switch cleanWord(words[i+1]) {
			case "der", "de", "den":
				return w + " " + words[i+1]
			}
		}
		found = w
	}
	return found
}

func cleanWord(w string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(w), "")
}
