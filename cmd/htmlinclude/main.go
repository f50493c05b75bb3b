package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"go.uber.org/automaxprocs/maxprocs"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/config"
	"github.com/alnah/go-include/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand is returned for a first argument that is neither a
// command nor an HTML document.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	env := DefaultEnv()
	setMaxProcs(env.Stderr, isVerbose(os.Args[1:]))
	os.Exit(runMain(context.Background(), os.Args[1:], env))
}

// setMaxProcs configures GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(w io.Writer, verbose bool) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// isVerbose reports whether -v or --verbose appears before a "--".
func isVerbose(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}

// runMain dispatches args to a command and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	warnUnknownEnvVars(env)

	var err error
	switch cmd, rest := args[0], args[1:]; {
	case isCommand(cmd, "resolve"):
		err = runResolve(ctx, rest, env)
	case isCommand(cmd, "serve"):
		err = runServe(ctx, rest, env)
	case isCommand(cmd, "doctor"):
		return runDoctorCmd(ctx, rest, env)
	case isCommand(cmd, "version", "--version"):
		fmt.Fprintf(env.Stdout, "htmlinclude %s\n", Version)
		return ExitSuccess
	case isCommand(cmd, "help", "-h", "--help"):
		return runHelp(rest, env)
	case looksLikeHTML(cmd) || cmd == stdinArg:
		// Shorthand: htmlinclude page.html == htmlinclude resolve page.html
		err = runResolve(ctx, args, env)
	default:
		err = fmt.Errorf("%w: %s (run 'htmlinclude help')", ErrUnknownCommand, cmd)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// isCommand reports whether arg is one of names.
func isCommand(arg string, names ...string) bool {
	for _, n := range names {
		if arg == n {
			return true
		}
	}
	return false
}

// looksLikeHTML reports whether arg names an HTML document.
func looksLikeHTML(arg string) bool {
	return !strings.HasPrefix(arg, "-") && isHTMLFile(arg)
}

// hintFor returns an actionable hint for errors users can fix themselves.
func hintFor(err error) string {
	var nf *config.NotFoundError
	switch {
	case errors.As(err, &nf):
		return hints.ForConfigNotFound(nf.Tried)
	case errors.Is(err, include.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout("")
	case errors.Is(err, config.ErrInvalidValue) && strings.Contains(err.Error(), "highlight.style"):
		return hints.ForHighlightStyle(styles.Names())
	}
	return ""
}
