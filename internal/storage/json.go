package storage

import (
	"bytes"
	"context"
	"encoding/json"
)

// LoadJSON loads key and decodes it into v. ok is false when the key is absent,
// in which case v is untouched.
func LoadJSON(ctx context.Context, s Store, key string, v any) (ok bool, err error) {
	b, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, err
	}
	return true, nil
}

// SaveJSON writes v as indented UTF-8 JSON. HTML characters in titles are kept
// literal so the blob stays readable.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return s.Save(ctx, key, b)
}

func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
