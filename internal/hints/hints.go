// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-include/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for a Chrome launch failure during PDF
// export. Resolved HTML is written before export, so dropping --pdf always
// works; sandbox and binary hints depend on where the tool runs.
func ForBrowserConnect() string {
	hints := []string{"resolved HTML was still written; rerun without --pdf to skip export"}

	sandboxed := IsInContainer()
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		sandboxed = sandboxed || os.Getenv(v) != ""
	}
	if sandboxed && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "containers and CI runners need ROD_NO_SANDBOX=1")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "point ROD_BROWSER_BIN at an installed Chrome to skip the download")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint for a source that did not answer in time.
// uri names the source when known.
func ForTimeout(uri string) string {
	if uri == "" {
		return format("raise fetch.timeout or pass --timeout for slow sources")
	}
	return format(uri + " answered too slowly; raise --timeout or cache it with --cache")
}

// ForConfigNotFound returns hints for a config name that matched no file.
// The XDG location is offered when it was among the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "pass --config /path/to/file.yaml or set HTMLINCLUDE_CONFIG"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-include") {
			return format(hint + ", or create " + p)
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForHighlightStyle returns hints listing known highlight styles.
func ForHighlightStyle(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForRedisConnect returns hints for an unreachable cache backend.
func ForRedisConnect(addr string) string {
	if addr == "" {
		return format("set cache.redis.addr or HTMLINCLUDE_REDIS_ADDR")
	}
	return format("check that redis is reachable at " + addr + ", or set cache.backend: memory")
}

// ForUnsupportedScheme returns hints for sources that no fetcher accepts.
func ForUnsupportedScheme(fileRoot string) string {
	if fileRoot == "" {
		return format("file sources need --root; only http and https are enabled")
	}
	return format("supported schemes: http, https, file")
}

// ForOutsideRoot returns hints for file sources escaping the file root.
func ForOutsideRoot(fileRoot string) string {
	return format("file sources must stay under " + fileRoot)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
