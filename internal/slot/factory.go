package slot

import (
	"context"
	"fmt"

	"addrbook/internal/addrbook"
	"addrbook/internal/config"
	"addrbook/internal/database"
)

// NewSlotFromConfig creates a Slot implementation based on the slot config type.
func NewSlotFromConfig(ctx context.Context, cfg config.SlotConfig) (addrbook.Slot, error) {
	name := cfg.Name
	if name == "" {
		name = addrbook.DefaultSlotName
	}

	switch cfg.Type {
	case "memory":
		return NewMemorySlot(name), nil
	case "filesystem":
		if cfg.FSDir == "" {
			return nil, fmt.Errorf("filesystem slot requires fs_dir to be set")
		}
		s, err := NewFileSystemSlot(name, cfg.FSDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite slot requires sqlite_path to be set")
		}
		s, err := database.NewSQLiteSlot(cfg.SQLitePath, name)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Slot(ctx, name, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown slot type: %q", cfg.Type)
	}
}
