package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the persisted form of created_at: fixed width UTC, so
// ordering the text column orders rows chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// FormatTimestamp renders t in TimestampLayout after converting to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and the variants older rows may hold
// (no fractional part, RFC 3339 with offset).
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range legacyTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// EncodeImages serialises the image path list to its JSON text column form.
func EncodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeImages parses the JSON text column. Empty text and JSON null both
// decode to an empty, non-nil list.
func DecodeImages(s string) ([]string, error) {
	images := []string{}
	if s == "" {
		return images, nil
	}
	if err := json.Unmarshal([]byte(s), &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if images == nil {
		images = []string{}
	}
	return images, nil
}
