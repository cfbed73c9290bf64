package addrbook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeCollection decodes a JSON array of record objects. It fails closed:
// anything other than an array whose elements are all objects is rejected.
func DecodeCollection(data []byte) ([]AddressRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if len(trimmed) > 0 {
			var v any
			if err := json.Unmarshal(trimmed, &v); err != nil {
				return nil, fmt.Errorf("decoding collection: %w", err)
			}
		}
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("decoding collection: %w", err)
	}

	records := make([]AddressRecord, 0, len(elems))
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, fmt.Errorf("element %d: %w", i, ErrNotObject)
		}
		var r AddressRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// EncodeCollection serializes records as a JSON array.
func EncodeCollection(records []AddressRecord) ([]byte, error) {
	if records == nil {
		records = []AddressRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding collection: %w", err)
	}
	return data, nil
}
