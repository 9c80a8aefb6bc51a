package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	t.Run("canonical values", func(t *testing.T) {
		cases := map[string]Status{
			"open":    StatusOpen,
			"closed":  StatusClosed,
			"removed": StatusRemoved,
		}
		for in, want := range cases {
			got, err := ParseStatus(in)
			if err != nil {
				t.Fatalf("ParseStatus(%q): %v", in, err)
			}
			if got != want {
				t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("legacy aliases", func(t *testing.T) {
		if got, _ := ParseStatus("resolved"); got != StatusClosed {
			t.Errorf("resolved = %q, want closed", got)
		}
		if got, _ := ParseStatus("deleted"); got != StatusRemoved {
			t.Errorf("deleted = %q, want removed", got)
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		if _, err := ParseStatus("escalated"); err == nil {
			t.Fatal("expected error for unknown status")
		}
	})
}

func TestTicketValidate(t *testing.T) {
	valid := func() *Ticket {
		return &Ticket{
			ID:        "t1",
			MsgID:     "m1",
			Status:    StatusOpen,
			Timestamp: Timestamp{time.Now()},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid ticket: %v", err)
	}

	tk := valid()
	tk.ID = ""
	if err := tk.Validate(); err == nil {
		t.Error("expected error for missing id")
	}

	tk = valid()
	tk.MsgID = ""
	if err := tk.Validate(); err == nil {
		t.Error("expected error for missing msg_id")
	}

	tk = valid()
	tk.Status = "bogus"
	if err := tk.Validate(); err == nil {
		t.Error("expected error for bad status")
	}

	tk = valid()
	tk.Timestamp = Timestamp{}
	if err := tk.Validate(); err == nil {
		t.Error("expected error for zero timestamp")
	}
}

func TestTicketCanonicalize(t *testing.T) {
	tk := &Ticket{ID: "t1", MsgID: "m1", Status: "deleted", Timestamp: Timestamp{time.Now()}}
	tk.Canonicalize()
	if tk.Status != StatusRemoved {
		t.Errorf("status = %q, want removed", tk.Status)
	}
}

func TestTicketJSONShape(t *testing.T) {
	tk := &Ticket{
		ID:              "t1",
		MsgID:           "m1",
		Status:          StatusOpen,
		Timestamp:       Timestamp{time.Date(2023, 11, 21, 10, 0, 0, 0, time.UTC)},
		ContextMessages: []string{"m1", "m2"},
	}
	data, err := json.Marshal(tk)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	json.Unmarshal(data, &m)

	for _, key := range []string{"id", "msg_id", "status", "resolved_by", "ts_last_status_change", "timestamp", "context_messages"} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled ticket missing %q", key)
		}
	}
	// msg is in-memory only and must stay out of the payload when unresolved
	if _, ok := m["msg"]; ok {
		t.Error("nil msg should be omitted")
	}
	if string(m["resolved_by"]) != "null" {
		t.Errorf("resolved_by = %s, want null", m["resolved_by"])
	}
}
