package logger

import "testing"

func TestNewLevels(t *testing.T) {
	cases := []struct {
		env, level string
		debug      bool
	}{
		{"development", "debug", true},
		{"production", "info", false},
		{"production", "nonsense", false},
		{"test", "debug", true},
	}
	for _, tc := range cases {
		log := New(tc.env, tc.level)
		if got := log.Desugar().Core().Enabled(-1); got != tc.debug {
			t.Errorf("New(%q, %q) debug enabled = %v, want %v", tc.env, tc.level, got, tc.debug)
		}
	}
}
