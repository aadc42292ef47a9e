package main

import "testing"

func TestSnapshotDiffReportsNoChangeForIdenticalJSON(t *testing.T) {
	const snap = `{"memcpy_ops":1,"total_ops":1}`
	out, err := snapshotDiff(snap, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "(no change)" {
		t.Fatalf("expected no-change marker, got %q", out)
	}
}

func TestSnapshotDiffDetectsFieldChange(t *testing.T) {
	before := `{"memcpy_ops":1,"total_ops":1}`
	after := `{"memcpy_ops":5,"total_ops":5}`
	out, err := snapshotDiff(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "(no change)" || out == "" {
		t.Fatal("expected a non-empty diff for changed fields")
	}
}
