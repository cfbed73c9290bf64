package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)

	tests := []struct {
		name      string
		operation string
	}{
		{name: "add", operation: "Add"},
		{name: "list", operation: "List"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, now)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.ID != "20240115T103000.123Z" {
				t.Errorf("ID = %q, want %q", op.ID, "20240115T103000.123Z")
			}
			if !op.Started.Equal(now) {
				t.Errorf("Started = %v, want %v", op.Started, now)
			}
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("Add", time.Now())
	if op.Failed() {
		t.Fatal("new operation reports failure")
	}

	op.Fail()
	if !op.Failed() {
		t.Error("Failed() = false after Fail()")
	}
	if op.Status != "error" {
		t.Errorf("Status = %q, want %q", op.Status, "error")
	}
}
