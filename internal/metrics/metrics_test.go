package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.SlotRead(true)
	r.SlotRead(false)
	r.SlotWrite(true)
	r.SlotWrite(true)
	r.SharedFetch(false)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "slot reads ok", got: testutil.ToFloat64(r.slotReads.WithLabelValues("ok")), want: 1},
		{name: "slot reads error", got: testutil.ToFloat64(r.slotReads.WithLabelValues("error")), want: 1},
		{name: "slot writes ok", got: testutil.ToFloat64(r.slotWrites.WithLabelValues("ok")), want: 2},
		{name: "slot writes error", got: testutil.ToFloat64(r.slotWrites.WithLabelValues("error")), want: 0},
		{name: "shared fetches error", got: testutil.ToFloat64(r.sharedFetches.WithLabelValues("error")), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRecorder_Records(t *testing.T) {
	r := NewRecorder()
	r.Records(3, 7)
	r.Records(2, 7)

	if got := testutil.ToFloat64(r.records.WithLabelValues("local")); got != 2 {
		t.Errorf("local records = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.records.WithLabelValues("shared")); got != 7 {
		t.Errorf("shared records = %v, want 7", got)
	}
}

func TestRecorder_RegistryIsPrivate(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.SlotRead(true)

	if got := testutil.ToFloat64(b.slotReads.WithLabelValues("ok")); got != 0 {
		t.Errorf("second recorder saw %v reads, want 0", got)
	}
	if n := testutil.CollectAndCount(a.Registry()); n != 8 {
		t.Errorf("registry has %d series, want 8", n)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.SharedFetch(true)
	r.Records(1, 2)

	path := filepath.Join(t.TempDir(), "addrbook.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	for _, want := range []string{
		`addrbook_shared_fetches_total{result="ok"} 1`,
		`addrbook_records{origin="local"} 1`,
		`addrbook_records{origin="shared"} 2`,
		`# TYPE addrbook_slot_reads_total counter`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestRecorder_WriteTextfileBadPath(t *testing.T) {
	r := NewRecorder()
	path := filepath.Join(t.TempDir(), "missing", "addrbook.prom")
	if err := r.WriteTextfile(path); err == nil {
		t.Error("WriteTextfile() into a missing directory expected error")
	}
}
