package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{12 * time.Second, "12.00s"},
		{90 * time.Second, "1.5m"},
		{2 * time.Hour, "2.0h"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContains(t *testing.T) {
	statuses := []string{"ACCEPTED", "PROCESSING"}

	if !Contains(statuses, "PROCESSING") {
		t.Error("PROCESSING not found")
	}
	if Contains(statuses, "SUCCESS") {
		t.Error("SUCCESS unexpectedly found")
	}
	if Contains(nil, "anything") {
		t.Error("match in nil slice")
	}
}

func TestGetStringOrDefault(t *testing.T) {
	if got := GetStringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("got %q", got)
	}
	if got := GetStringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
}
