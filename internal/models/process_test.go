package models

import (
	"testing"
	"time"
)

func TestStateFromStatus(t *testing.T) {
	cases := map[string]ProcessState{
		"running":    StateRunning,
		"Run":        StateRunning,
		"sleep":      StateSleeping,
		"idle":       StateSleeping,
		"disk-sleep": StateSleeping,
		"stop":       StateStopped,
		"zombie":     StateZombie,
		"":           StateUnknown,
		"paradoxical": StateUnknown,
	}
	for in, want := range cases {
		if got := StateFromStatus(in); got != want {
			t.Fatalf("StateFromStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRuntime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-5 * time.Second, "0s"},
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m 0s"},
		{3*time.Hour + 7*time.Minute + 9*time.Second, "3h 7m 9s"},
		{2 * time.Hour, "2h 0m 0s"},
	}
	for _, tc := range cases {
		if got := FormatRuntime(tc.in); got != tc.want {
			t.Fatalf("FormatRuntime(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIdentityDistinguishesPIDReuse(t *testing.T) {
	a := ProcessRecord{PID: 7, StartTime: time.Unix(100, 0)}
	b := ProcessRecord{PID: 7, StartTime: time.Unix(200, 0)}
	if a.Identity() == b.Identity() {
		t.Fatal("identities with different start times must differ")
	}
	if a.Identity() != (Identity{PID: 7, StartTime: time.Unix(100, 0)}) {
		t.Fatal("identity should be PID plus start time")
	}
}
