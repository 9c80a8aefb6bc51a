package protocol

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamp is a time.Time that accepts any ISO-8601 shape on the wire.
// Datasets exported from the chat platform tooling carry isoformat strings
// with or without zone offsets and fractional seconds; dateparse handles
// all of them. Marshaling always emits RFC 3339.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses a single timestamp string.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return Timestamp{t}, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("malformed timestamp %s: not a JSON string", data)
	}
	ts, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = ts
	return nil
}
