package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"addrbook/internal/addrbook"
	"addrbook/internal/app"
	"addrbook/internal/catalog"
	"addrbook/internal/export"
)

func printRecords(w io.Writer, a *app.App, records []addrbook.AddressRecord, output string) error {
	switch output {
	case "", "table":
		return writeTable(w, records, a.Store().DisplayAddressString)
	case "json":
		return export.WriteJSON(w, records)
	case "yaml":
		return export.WriteYAML(w, records)
	default:
		return fmt.Errorf("unknown output format: %s (want table, json or yaml)", output)
	}
}

// writeTable prints one row per record. display formats the postal code and
// city column.
func writeTable(w io.Writer, records []addrbook.AddressRecord, display func(addrbook.AddressRecord) string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTREET\tPLACE\tCATEGORY\tSOURCE")
	for _, r := range records {
		street := strings.TrimSpace(r.Street + " " + r.HouseNumber)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, street, display(r), r.CategoryName(), r.Origin)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	fmt.Fprintf(w, "\n%d address(es)\n", len(records))
	return nil
}

func printDetail(w io.Writer, a *app.App, r addrbook.AddressRecord) {
	fmt.Fprintf(w, "ID:        %s\n", r.ID)
	fmt.Fprintf(w, "Name:      %s\n", r.Name)
	fmt.Fprintf(w, "Address:   %s\n", a.Store().FullAddressString(r))
	fmt.Fprintf(w, "Category:  %s\n", orNone(r.CategoryName()))
	fmt.Fprintf(w, "Location:  %s\n", formatCoordinates(r))
	fmt.Fprintf(w, "Source:    %s\n", r.Origin)
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Added:     %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func formatCoordinates(r addrbook.AddressRecord) string {
	if !r.HasCoordinates() {
		return "(none)"
	}
	return strconv.FormatFloat(*r.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
}

func exportRecords(w io.Writer, format string, records []addrbook.AddressRecord, country string) error {
	if err := export.Write(w, format, records, country); err != nil {
		return fmt.Errorf("exporting %s: %w", format, err)
	}
	return nil
}

// writeOutput runs write against path, or stdout when path is empty. The
// file is replaced only when write succeeds.
func writeOutput(path string, write func(f *os.File) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".addrbook-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

// buildCatalog converts a CSV export into a shared catalog written to out,
// or stdout when out is empty. It returns the number of records written.
func buildCatalog(csvPath, out string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", csvPath, err)
	}
	defer f.Close()

	records, err := catalog.BuildFromCSV(f, addrbook.RealClock{})
	if err != nil {
		return 0, fmt.Errorf("building catalog from %s: %w", csvPath, err)
	}

	if err := writeOutput(out, func(w *os.File) error {
		return export.WriteJSON(w, records)
	}); err != nil {
		return 0, err
	}
	return len(records), nil
}
