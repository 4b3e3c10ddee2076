package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/beaux-riel/openengram-site/internal/client/models"
)

// decodeKeyList accepts {"keys": [...]}, a bare array, or a single record
// and always returns a non-nil slice.
func decodeKeyList(raw json.RawMessage) ([]models.APIKeyRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.APIKeyRecord{}, nil
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("decode key list: %w", err)
		}
		if keys, ok := fields["keys"]; ok {
			return decodeArray(keys)
		}
		var rec models.APIKeyRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("decode key record: %w", err)
		}
		if rec.ID == "" && rec.Key == "" {
			return []models.APIKeyRecord{}, nil
		}
		return []models.APIKeyRecord{rec}, nil
	default:
		return nil, fmt.Errorf("decode key list: unexpected payload %.20q", trimmed)
	}
}

func decodeArray(b []byte) ([]models.APIKeyRecord, error) {
	list := []models.APIKeyRecord{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return list, nil
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode key list: %w", err)
	}
	return list, nil
}
