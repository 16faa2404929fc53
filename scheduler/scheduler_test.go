package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

type fakeCleaner struct {
	days  []int
	err   error
	count int64
}

func (f *fakeCleaner) Cleanup(_ context.Context, days int) (int64, error) {
	f.days = append(f.days, days)
	return f.count, f.err
}

func TestScheduleCleanupValidates(t *testing.T) {
	s := New(log.New(&bytes.Buffer{}, "", 0))
	if _, err := s.ScheduleCleanup("@daily", 0, &fakeCleaner{}); err == nil {
		t.Fatalf("expected error for zero retention")
	}
	if _, err := s.ScheduleCleanup("not a schedule", 30, &fakeCleaner{}); err == nil {
		t.Fatalf("expected error for bad spec")
	}
	if _, err := s.ScheduleCleanup("@daily", 30, &fakeCleaner{}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if s.Entries() != 1 {
		t.Fatalf("expected 1 entry got %d", s.Entries())
	}
	s.Start()
	s.Stop()
}

func TestRunCleanupLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	s := New(log.New(&buf, "", 0))

	ok := &fakeCleaner{count: 7}
	s.runCleanup(ok, 30)
	if len(ok.days) != 1 || ok.days[0] != 30 {
		t.Fatalf("expected cleanup with 30 days, got %v", ok.days)
	}
	if !strings.Contains(buf.String(), "removed 7 entries") {
		t.Fatalf("expected success log, got %q", buf.String())
	}

	s.runCleanup(&fakeCleaner{err: errors.New("db down")}, 30)
	if !strings.Contains(buf.String(), "db down") {
		t.Fatalf("expected failure log, got %q", buf.String())
	}
}
