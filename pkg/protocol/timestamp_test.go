package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"2023-11-21T10:00:00Z"`), &ts); err != nil {
			t.Fatal(err)
		}
		want := time.Date(2023, 11, 21, 10, 0, 0, 0, time.UTC)
		if !ts.Equal(want) {
			t.Errorf("got %v, want %v", ts.Time, want)
		}
	})

	t.Run("python isoformat without zone", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"2023-11-21T10:00:00.123456"`), &ts); err != nil {
			t.Fatal(err)
		}
		if ts.Year() != 2023 || ts.Nanosecond() != 123456000 {
			t.Errorf("got %v", ts.Time)
		}
	})

	t.Run("null leaves zero value", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`null`), &ts); err != nil {
			t.Fatal(err)
		}
		if !ts.IsZero() {
			t.Errorf("got %v, want zero", ts.Time)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"not a time"`), &ts); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("non-string", func(t *testing.T) {
		var ts Timestamp
		if err := ts.UnmarshalJSON([]byte(`42`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestTimestampMarshal(t *testing.T) {
	ts := Timestamp{time.Date(2023, 11, 21, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2023-11-21T10:00:00Z"` {
		t.Errorf("got %s", data)
	}
}
