package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/config"
	"github.com/alnah/go-include/internal/hints"
)

// doctorPingTimeout bounds the cache reachability check.
const doctorPingTimeout = 3 * time.Second

// Overall doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Config   configInfo `json:"config"`
	Cache    cacheInfo  `json:"cache"`
	Style    styleInfo  `json:"style"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo holds configuration check results.
type configInfo struct {
	Source   string `json:"source"` // "defaults" or the name given
	Valid    bool   `json:"valid"`
	MaxDepth int    `json:"max_depth"`
}

// cacheInfo holds fetch cache check results.
type cacheInfo struct {
	Enabled   bool   `json:"enabled"`
	Backend   string `json:"backend,omitempty"`
	Addr      string `json:"addr,omitempty"`
	Reachable bool   `json:"reachable"`
}

// styleInfo reports whether the configured document style loads.
type styleInfo struct {
	Name   string `json:"name,omitempty"`
	Loaded bool   `json:"loaded"`
}

// chromeInfo holds Chrome/Chromium detection results. Chrome is only
// needed for PDF export, so a missing browser is a warning.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	configName := fs.StringP("config", "c", "", "config file name or path")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(ctx, *configName, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	if cfg := checkConfig(result, configName, env); cfg != nil {
		checkCache(ctx, result, cfg)
		checkStyle(result, cfg)
	}
	checkChrome(result)
	checkEnvironment(result, env)
	checkSystem(result)

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	}
	return result
}

// checkConfig loads and validates the configuration the other commands
// would use. Returns nil when it cannot be used.
func checkConfig(result *doctorResult, name string, env *Environment) *config.Config {
	result.Config.Source = name
	if result.Config.Source == "" {
		result.Config.Source = env.Getenv(config.EnvConfig)
	}
	if result.Config.Source == "" {
		result.Config.Source = "defaults"
	}

	cfg, err := loadConfig(name, env)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		msg := err.Error()
		var nf *config.NotFoundError
		if errors.As(err, &nf) {
			msg += hints.ForConfigNotFound(nf.Tried)
		}
		result.Errors = append(result.Errors, msg)
		return nil
	}

	result.Config.Valid = true
	result.Config.MaxDepth = cfg.Include.MaxDepth
	return cfg
}

// checkCache verifies the shared cache is reachable when one is configured.
func checkCache(ctx context.Context, result *doctorResult, cfg *config.Config) {
	result.Cache.Enabled = cfg.Cache.Enabled
	if !cfg.Cache.Enabled {
		return
	}
	result.Cache.Backend = cfg.Cache.Backend

	_, redis := newCache(cfg)
	if redis == nil {
		result.Cache.Reachable = true
		return
	}
	defer func() { _ = redis.Close() }()

	result.Cache.Addr = cfg.Cache.Redis.Addr
	pingCtx, cancel := context.WithTimeout(ctx, doctorPingTimeout)
	defer cancel()
	if err := redis.Ping(pingCtx); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("redis not reachable at %s: %v%s", cfg.Cache.Redis.Addr, err, hints.ForRedisConnect(cfg.Cache.Redis.Addr)))
		return
	}
	result.Cache.Reachable = true
}

// checkStyle loads the configured document style, if any.
func checkStyle(result *doctorResult, cfg *config.Config) {
	result.Style.Name = cfg.Style.Name
	if cfg.Style.Name == "" {
		return
	}
	if _, err := include.LoadStyle(cfg.Style.Name, cfg.Style.Dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("style %q: %v", cfg.Style.Name, err))
		return
	}
	result.Style.Loaded = true
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		// Use rod's launcher to locate Chrome
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; PDF export unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s; PDF export unavailable", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or launcher
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container = hints.IsInContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory used for PDF export is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "go-include-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// Status markers for doctor output lines.
const (
	markOK    = "[OK]"
	markWarn  = "[WARN]"
	markError = "[ERROR]"
)

// doctorPrinter writes sectioned status lines.
type doctorPrinter struct {
	w io.Writer
}

func (p doctorPrinter) section(title string) {
	fmt.Fprintln(p.w, title)
}

func (p doctorPrinter) line(mark, format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", mark, fmt.Sprintf(format, args...))
}

func (p doctorPrinter) end() {
	fmt.Fprintln(p.w)
}

// check prints msg as OK when ok holds and with failMark otherwise.
func (p doctorPrinter) check(ok bool, failMark, msg string) {
	if ok {
		p.line(markOK, "%s", msg)
		return
	}
	p.line(failMark, "%s", msg)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	p := doctorPrinter{w: w}
	fmt.Fprintln(w, "htmlinclude doctor")
	p.end()

	p.section("Configuration")
	p.check(r.Config.Valid, markError, "Source: "+r.Config.Source)
	if r.Config.Valid {
		p.line(markOK, "Max depth: %d", r.Config.MaxDepth)
	}
	p.end()

	p.section("Cache")
	switch {
	case !r.Cache.Enabled:
		p.line(markOK, "Disabled")
	case r.Cache.Addr != "":
		p.check(r.Cache.Reachable, markError, r.Cache.Backend+" at "+r.Cache.Addr)
	default:
		p.check(r.Cache.Reachable, markError, r.Cache.Backend)
	}
	p.end()

	p.section("Style")
	switch {
	case r.Style.Name == "":
		p.line(markOK, "None (built-in: %s)", strings.Join(include.StyleNames(), ", "))
	default:
		p.check(r.Style.Loaded, markError, "Style: "+r.Style.Name)
	}
	p.end()

	p.section("Chrome/Chromium (PDF export)")
	if r.Chrome.Found {
		p.line(markOK, "Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			p.line(markOK, "Version: %s", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			p.line(markOK, "Sandbox: enabled")
		} else {
			p.line(markOK, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		p.line(markWarn, "Not found")
	}
	p.end()

	p.section("Environment")
	p.line(markOK, "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		p.line(markOK, "Container: detected")
	}
	if r.Env.CI {
		p.line(markOK, "CI: detected")
	}
	p.check(r.System.TempWritable, markError, "Temp directory writable")
	p.end()

	if len(r.Warnings) > 0 {
		p.section("Warnings:")
		for _, warn := range r.Warnings {
			p.line(markWarn, "%s", warn)
		}
		p.end()
	}
	if len(r.Errors) > 0 {
		p.section("Errors:")
		for _, err := range r.Errors {
			p.line(markError, "%s", err)
		}
		p.end()
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
