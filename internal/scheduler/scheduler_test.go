package scheduler

import "testing"

func TestAddJob(t *testing.T) {
	s := New(nil)

	if err := s.AddJob("stats", "@every 1h", func() {}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.JobCount() != 1 {
		t.Errorf("count = %d", s.JobCount())
	}
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(nil)
	if err := s.AddJob("stats", "whenever", func() {}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if s.JobCount() != 0 {
		t.Errorf("count = %d", s.JobCount())
	}
}

func TestAddJobReplaces(t *testing.T) {
	s := New(nil)
	s.AddJob("stats", "@every 1h", func() {})
	s.AddJob("stats", "@every 5m", func() {})
	if s.JobCount() != 1 {
		t.Errorf("count = %d", s.JobCount())
	}
}

func TestRemoveJob(t *testing.T) {
	s := New(nil)
	s.AddJob("stats", "@every 1h", func() {})
	s.RemoveJob("stats")
	if s.JobCount() != 0 {
		t.Errorf("count = %d", s.JobCount())
	}
	s.RemoveJob("stats") // no-op
}
