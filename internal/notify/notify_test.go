package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modq-io/modq/pkg/protocol"
)

type fakeNotifier struct {
	name  string
	err   error
	calls int
}

func (f *fakeNotifier) Name() string { return f.name }
func (f *fakeNotifier) TicketStatusChanged(context.Context, *protocol.Ticket) error {
	f.calls++
	return f.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	f := Fanout{a, b}

	if err := f.TicketStatusChanged(context.Background(), &protocol.Ticket{ID: "t1"}); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d", a.calls, b.calls)
	}
}

func TestFanoutJoinsFailures(t *testing.T) {
	a := &fakeNotifier{name: "a", err: errors.New("boom")}
	b := &fakeNotifier{name: "b"}
	f := Fanout{a, b}

	err := f.TicketStatusChanged(context.Background(), &protocol.Ticket{ID: "t1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "a: boom") {
		t.Errorf("error should name the notifier: %v", err)
	}
	if b.calls != 1 {
		t.Error("failure in one notifier must not skip the others")
	}
}

func TestStatusLine(t *testing.T) {
	tk := &protocol.Ticket{
		ID:     "t1",
		Status: protocol.StatusRemoved,
		Msg:    &protocol.Message{Author: protocol.Author{Name: "bramble"}},
	}
	line := statusLine(tk)
	for _, want := range []string{"t1", "removed", "bramble"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
