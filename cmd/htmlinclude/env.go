package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-include/internal/config"
)

// envPrefix is shared by every environment override.
const envPrefix = "HTMLINCLUDE_"

// knownEnvVars lists valid HTMLINCLUDE_* environment variables.
var knownEnvVars = map[string]bool{
	config.EnvConfig:    true,
	config.EnvMaxDepth:  true,
	config.EnvTimeout:   true,
	config.EnvRedisAddr: true,
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	Config  *config.Config // Loaded once per command
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Config:  config.DefaultConfig(),
	}
}

// warnUnknownEnvVars reports HTMLINCLUDE_* variables that nothing reads.
// Helps catch typos like HTMLINCLUDE_MAXDEPTH.
func warnUnknownEnvVars(env *Environment) {
	if env.Environ == nil {
		return
	}
	for _, kv := range env.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(env.Stderr, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}
