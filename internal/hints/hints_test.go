package hints

// Notes:
// - ForBrowserConnect reads the process environment and the package-level
//   IsInContainer hook, so its cases run sequentially with t.Setenv.
// - Every CI variable the detector reads is cleared per case so results do
//   not depend on where the tests run.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment Detection
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		container bool
		want      []string
		reject    []string
	}{
		{
			name: "ci suggests sandbox and binary",
			env:  map[string]string{"CI": "true"},
			want: []string{"hint:", "without --pdf", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name:      "container suggests sandbox",
			container: true,
			want:      []string{"ROD_NO_SANDBOX"},
		},
		{
			name:      "sandbox already disabled",
			env:       map[string]string{"ROD_NO_SANDBOX": "1"},
			container: true,
			want:      []string{"ROD_BROWSER_BIN"},
			reject:    []string{"ROD_NO_SANDBOX"},
		},
		{
			name:   "binary already set outside ci",
			env:    map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			want:   []string{"without --pdf"},
			reject: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name:      "everything configured",
			env:       map[string]string{"GITHUB_ACTIONS": "true", "ROD_NO_SANDBOX": "1", "ROD_BROWSER_BIN": "/usr/bin/chromium"},
			container: true,
			want:      []string{"hint: resolved HTML was still written"},
			reject:    []string{"ROD_"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			t.Cleanup(func() { IsInContainer = orig })
			IsInContainer = func() bool { return tt.container }

			for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
				t.Setenv(key, tt.env[key])
			}

			hint := ForBrowserConnect()
			for _, w := range tt.want {
				if !strings.Contains(hint, w) {
					t.Errorf("hint %q missing %q", hint, w)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(hint, r) {
					t.Errorf("hint %q should not contain %q", hint, r)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStaticHints - Hints Without Environment Input
// ---------------------------------------------------------------------------

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timeout", ForTimeout(""), "--timeout"},
		{"timeout names source", ForTimeout("https://slow.example/a.md"), "https://slow.example/a.md answered too slowly"},
		{"output directory", ForOutputDirectory(), "writable"},
		{"config with xdg path", ForConfigNotFound([]string{"./x.yaml", "/home/u/.config/go-include/x.yaml"}), "create /home/u/.config/go-include/x.yaml"},
		{"config without xdg path", ForConfigNotFound([]string{"./x.yaml"}), "HTMLINCLUDE_CONFIG"},
		{"highlight styles", ForHighlightStyle([]string{"github", "monokai"}), "available: github, monokai"},
		{"redis without addr", ForRedisConnect(""), "HTMLINCLUDE_REDIS_ADDR"},
		{"redis with addr", ForRedisConnect("cache:6379"), "reachable at cache:6379"},
		{"scheme without root", ForUnsupportedScheme(""), "--root"},
		{"scheme with root", ForUnsupportedScheme("/srv/docs"), "http, https, file"},
		{"outside root", ForOutsideRoot("/srv/docs"), "under /srv/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !strings.HasPrefix(tt.got, "\n  hint: ") {
				t.Errorf("hint %q lacks the standard prefix", tt.got)
			}
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("hint %q missing %q", tt.got, tt.want)
			}
		})
	}
}

func TestForHighlightStyle_Empty(t *testing.T) {
	t.Parallel()

	if got := ForHighlightStyle(nil); got != "" {
		t.Errorf("ForHighlightStyle(nil) = %q, want empty", got)
	}
}
