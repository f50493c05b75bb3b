package main

import (
	"bytes"
	"os"
	"testing"
)

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()
	if env.Now == nil || env.Getenv == nil || env.Environ == nil {
		t.Fatal("DefaultEnv() left a function nil")
	}
	if env.Stdin != os.Stdin || env.Stdout != os.Stdout || env.Stderr != os.Stderr {
		t.Error("DefaultEnv() should use the process streams")
	}
	if env.Config == nil || env.Config.Include.MaxDepth != 3 {
		t.Errorf("Config = %+v, want defaults", env.Config)
	}
}

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		environ []string
		want    string
	}{
		{"known variables are silent", []string{"HTMLINCLUDE_CONFIG=x", "HTMLINCLUDE_REDIS_ADDR=r:6379"}, ""},
		{"typo is reported", []string{"HTMLINCLUDE_TIMOUT=5s"}, "warning: unknown environment variable HTMLINCLUDE_TIMOUT (typo?)\n"},
		{"other prefixes ignored", []string{"PATH=/bin", "MD_INCLUDE=1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			env := &Environment{Stderr: &stderr, Environ: func() []string { return tt.environ }}
			warnUnknownEnvVars(env)
			if got := stderr.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("nil environ", func(t *testing.T) {
		t.Parallel()
		warnUnknownEnvVars(&Environment{})
	})
}
