package main

import (
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://example.test/login", false},
		{"http://localhost:8080", false},
		{"example.test/login", true},
		{"/login", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := parseEndpoint(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEndpoint(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && u.String() != tt.raw {
				t.Errorf("parseEndpoint(%q) = %q", tt.raw, u.String())
			}
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"open", "profiles", "history"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}

	open, _, _ := root.Find([]string{"open"})
	for _, flag := range []string{"mode", "engine", "keep-cookies", "hold", "screenshot"} {
		if open.Flags().Lookup(flag) == nil {
			t.Errorf("open is missing --%s", flag)
		}
	}
}

func TestCLI_SetupAppliesLogLevel(t *testing.T) {
	c := &cli{logLevel: "debug"}
	if err := c.setup(); err != nil {
		t.Fatalf("setup() returned error: %v", err)
	}
	defer c.closeLog()

	if c.settings.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", c.settings.Log.Level)
	}
}
