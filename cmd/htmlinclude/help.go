package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlinclude <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  resolve    Resolve data-include elements in HTML documents")
	fmt.Fprintln(w, "  serve      Serve the inclusion pipeline over HTTP")
	fmt.Fprintln(w, "  doctor     Check configuration, cache and browser")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'htmlinclude help <command>' for details on a specific command.")
}

// printResolveUsage prints usage for the resolve command.
func printResolveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlinclude resolve <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolve data-include elements in HTML documents.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file, directory, or - for stdin to stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to source, *.resolved.html)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel documents (0 = auto)")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf                 Also export each document to PDF")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <n>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w, "      --page-numbers        Print page numbers in the footer")
	fmt.Fprintln(w, "      --footer-date <s>     Footer date: text, auto, or auto:FORMAT")
	fmt.Fprintln(w, "                            (tokens YYYY MM DD; presets iso, us, european, long)")
	fmt.Fprintln(w)
	printOutputControlFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 ok, 1 error, 2 usage, 3 I/O, 4 browser, 5 some inclusions failed")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlinclude serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the inclusion pipeline over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /v1/include          Resolve the request body; ?base= sets the base URL")
	fmt.Fprintln(w, "  GET  /healthz             Liveness and cache reachability")
	fmt.Fprintln(w, "  GET  /metrics             Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default: :8080)")
	fmt.Fprintln(w, "      --max-body <n>        Request body limit in bytes (default: 10MB)")
	fmt.Fprintln(w, "      --metrics             Expose /metrics (default: true)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	printOutputControlFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlinclude doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check configuration, cache and browser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// printPipelineFlags prints the flags shared by resolve and serve.
func printPipelineFlags(w io.Writer) {
	fmt.Fprintln(w, "Inclusion:")
	fmt.Fprintln(w, "  -d, --max-depth <n>       Inclusion passes per document (default: 3)")
	fmt.Fprintln(w, "      --concurrency <n>     Inclusions resolved at once (0 = unlimited)")
	fmt.Fprintln(w, "  -b, --base <url>          Base URL for relative sources")
	fmt.Fprintln(w, "      --root <dir>          Confine file sources to this directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fetching:")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-fetch timeout (default: 30s)")
	fmt.Fprintln(w, "      --user-agent <s>      User-Agent for HTTP fetches")
	fmt.Fprintln(w, "  -H, --header <k: v>       Extra request header (repeatable)")
	fmt.Fprintln(w, "      --cache               Cache fetched sources in memory")
	fmt.Fprintln(w, "      --redis-addr <addr>   Share the cache through redis")
	fmt.Fprintln(w, "      --cache-ttl <dur>     Cache entry lifetime (default: 5m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --no-sections         Do not wrap included markdown in sections")
	fmt.Fprintln(w, "      --no-highlight        Leave code sources as plain text")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style (default: github)")
	fmt.Fprintln(w, "      --inline-styles       Inline styles instead of CSS classes")
	fmt.Fprintln(w, "      --highlight-css       Inject the highlight style sheet")
	fmt.Fprintln(w, "  -s, --style <name|path>   Document style: document, print, compact, or a .css file")
	fmt.Fprintln(w, "      --style-dir <dir>     Directory with styles/{name}.css overrides")
	fmt.Fprintln(w)
}

// printOutputControlFlags prints logging and verbosity flags.
func printOutputControlFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      text, json")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "resolve":
		printResolveUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: htmlinclude version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: htmlinclude help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
