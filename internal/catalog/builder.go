package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"addrbook/internal/addrbook"
	"addrbook/internal/addressparse"
)

// Header keywords, matched case-insensitively as substrings. The first column
// containing any keyword of a field wins.
var (
	nameKeywords        = []string{"naam", "name", "label", "medewerker", "persoon"}
	streetKeywords      = []string{"straat", "street", "adres", "address"}
	houseNumberKeywords = []string{"huisnummer", "huis", "nummer", "number", "nr"}
	postalCodeKeywords  = []string{"postcode", "post", "zip", "pc"}
	cityKeywords        = []string{"plaats", "stad", "city", "gemeente"}
	fullAddressKeywords = []string{"volledig", "adres", "address", "volledige"}
	categoryKeywords    = []string{"bu", "business unit", "businessunit"}
	latitudeKeywords    = []string{"latitude", "lat"}
	longitudeKeywords   = []string{"longitude", "lng", "lon"}
)

// ErrNoHeader is returned for an input without a header row.
var ErrNoHeader = errors.New("csv has no header row")

type columns struct {
	name, street, houseNumber, postalCode, city int
	fullAddress, category, latitude, longitude  int
}

func detectColumns(header []string) columns {
	return columns{
		name:        findColumn(header, nameKeywords),
		street:      findColumn(header, streetKeywords),
		houseNumber: findColumn(header, houseNumberKeywords),
		postalCode:  findColumn(header, postalCodeKeywords),
		city:        findColumn(header, cityKeywords),
		fullAddress: findColumn(header, fullAddressKeywords),
		category:    findColumn(header, categoryKeywords),
		latitude:    findColumn(header, latitudeKeywords),
		longitude:   findColumn(header, longitudeKeywords),
	}
}

func findColumn(header []string, keywords []string) int {
	for i, col := range header {
		lower := strings.ToLower(col)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// hasSeparateAddress reports whether the export splits the address over
// dedicated columns, in which case a full-address column is only a fallback.
func (c columns) hasSeparateAddress() bool {
	return (c.street >= 0 && c.street != c.fullAddress) ||
		c.houseNumber >= 0 || c.postalCode >= 0 || c.city >= 0
}

func (c columns) isAddressColumn(i int) bool {
	switch i {
	case c.street, c.houseNumber, c.postalCode, c.city, c.fullAddress, c.category, c.latitude, c.longitude:
		return true
	}
	return false
}

// BuildFromCSV converts a spreadsheet export into shared catalog records.
// Both comma and semicolon separated files are accepted. Rows that are
// entirely empty are skipped but still count towards the row number used in
// ids ("shared-<row>") and default names ("Adres <row>").
func BuildFromCSV(r io.Reader, clock addrbook.Clock) ([]addrbook.AddressRecord, error) {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cols := detectColumns(header)
	now := clock.Now().UTC()

	records := []addrbook.AddressRecord{}
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}
		if isEmptyRow(fields) {
			continue
		}
		rec := buildRecord(cols, fields, row)
		rec.CreatedAt = now
		records = append(records, rec)
	}
	return records, nil
}

func buildRecord(cols columns, fields []string, row int) addrbook.AddressRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	rec := addrbook.AddressRecord{
		ID:     fmt.Sprintf("shared-%d", row),
		Origin: addrbook.OriginShared,
	}

	full := cell(cols.fullAddress)
	fillFromFull := func() {
		p := addressparse.ParseAddress(full)
		if p.Street != "" {
			rec.Street = p.Street
		}
		if p.HouseNumber != "" {
			rec.HouseNumber = p.HouseNumber
		}
		if p.PostalCode != "" {
			rec.PostalCode = p.PostalCode
		}
		if p.City != "" {
			rec.City = p.City
		}
	}

	if full != "" && !cols.hasSeparateAddress() {
		fillFromFull()
	}

	if v := cell(cols.name); v != "" {
		rec.Name = addressparse.FormatName(v)
	}

	if v := cell(cols.street); v != "" && cols.street != cols.fullAddress {
		rec.Street = v
	} else if full != "" && rec.Street == "" {
		fillFromFull()
	}

	if v := cell(cols.houseNumber); v != "" {
		rec.HouseNumber = v
	}
	if v := cell(cols.postalCode); v != "" {
		rec.PostalCode = v
	}
	if v := cell(cols.city); v != "" {
		rec.City = v
	}
	if v := cell(cols.category); v != "" {
		rec.Category = &v
	}
	rec.Latitude = parseCoordinate(cell(cols.latitude))
	rec.Longitude = parseCoordinate(cell(cols.longitude))

	if rec.Name == "" {
		for i := range fields {
			if i == cols.name || cols.isAddressColumn(i) {
				continue
			}
			if v := cell(i); v != "" {
				rec.Name = addressparse.FormatName(v)
				break
			}
		}
	}
	if rec.Name == "" {
		for i := range fields {
			if v := cell(i); v != "" {
				rec.Name = addressparse.FormatName(v)
				break
			}
		}
	}
	if rec.Name == "" {
		rec.Name = fmt.Sprintf("Adres %d", row)
	}
	return rec
}

// parseCoordinate accepts "52.09" and the Dutch spreadsheet form "52,09".
func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &f
}

func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// sniffDelimiter picks ';' when the header line has more semicolons than
// commas, as spreadsheet exports in Dutch locales do.
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
