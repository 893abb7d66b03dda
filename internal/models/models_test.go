package models

import (
	"testing"
	"time"
)

func TestNewProjectDescriptor(t *testing.T) {
	tt := []struct {
		path     string
		wantBase string
		wantExt  string
	}{
		{path: "/r/P1/proj.ap15", wantBase: "proj", wantExt: ".ap15"},
		{path: "/r/P1/line.2.ap15_1", wantBase: "line.2", wantExt: ".ap15_1"},
		{path: "/r/P1/noext", wantBase: "noext", wantExt: ""},
	}

	for _, tc := range tt {
		t.Run(tc.path, func(t *testing.T) {
			d := NewProjectDescriptor(tc.path)
			if d.Path != tc.path || d.BaseName != tc.wantBase || d.Extension != tc.wantExt {
				t.Errorf("NewProjectDescriptor(%q) = %+v", tc.path, d)
			}
		})
	}
}

func TestTaskState(t *testing.T) {
	terminal := map[TaskState]bool{StateSucceeded: true, StateFailed: true}
	for s := StateCreated; s <= StateFailed; s++ {
		if s.String() == "" {
			t.Errorf("state %d has no name", s)
		}
		if s.IsTerminal() != terminal[s] {
			t.Errorf("state %s terminal = %v", s, s.IsTerminal())
		}
	}
	if TaskState(99).String() != "" {
		t.Error("unknown state should have empty name")
	}
}

func TestArchiveRun(t *testing.T) {
	run := NewArchiveRun(0, []string{"/a", "/b"}, time.Now())

	if err := run.Validate(); err == nil {
		t.Error("expected validation error without ID")
	}

	run.SetID("run-1")
	run.Finish(2, 1, 1, time.Now())
	if err := run.Validate(); err != nil {
		t.Errorf("expected valid run, got %v", err)
	}

	run.Finish(1, 1, 1, time.Now())
	if err := run.Validate(); err == nil {
		t.Error("expected error when outcomes exceed total")
	}

	restored := &ArchiveRun{}
	restored.SetRootsString(run.RootsString())
	if len(restored.Roots()) != 2 || restored.Roots()[1] != "/b" {
		t.Errorf("roots did not round-trip: %v", restored.Roots())
	}
}

func TestArchiveOutcome(t *testing.T) {
	t.Run("succeeded is valid", func(t *testing.T) {
		o := NewArchiveOutcome(0, "run-1", "/r/p.ap15", "p_20260101_0000.zap15", OutcomeSucceeded)
		if err := o.Validate(); err != nil {
			t.Errorf("expected valid outcome, got %v", err)
		}
	})

	t.Run("failed requires message", func(t *testing.T) {
		o := NewArchiveOutcome(0, "run-1", "/r/p.ap15", "p.zap15", OutcomeFailed)
		if err := o.Validate(); err == nil {
			t.Error("expected error without message")
		}
		o.SetErrorMessage("locked")
		if err := o.Validate(); err != nil {
			t.Errorf("expected valid outcome, got %v", err)
		}
	})

	t.Run("pending is rejected", func(t *testing.T) {
		o := NewArchiveOutcome(0, "run-1", "/r/p.ap15", "p.zap15", OutcomePending)
		if err := o.Validate(); err == nil {
			t.Error("expected error for pending status")
		}
	})
}
