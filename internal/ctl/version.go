package ctl

import (
	"fmt"
	"runtime"
	"strings"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type daemonVersion struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuiltAt   string `json:"built_at"`
}

type versionReport struct {
	CLI struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
	} `json:"cli"`
	Daemon      *daemonVersion `json:"daemon,omitempty"`
	DaemonError string         `json:"daemon_error,omitempty"`
}

// Skewed reports whether the CLI and daemon were built from different
// releases. Development builds never count as skewed.
func (r versionReport) Skewed() bool {
	if r.Daemon == nil || r.CLI.Version == "dev" || r.Daemon.Version == "dev" {
		return false
	}
	return r.CLI.Version != r.Daemon.Version
}

// VersionInfo fetches the daemon version via GET /api/version and shows it
// next to the CLI's own. An unreachable daemon is reported, not returned.
func VersionInfo(baseURL string, jsonOutput bool) error {
	var rep versionReport
	rep.CLI.Version = Version
	rep.CLI.GoVersion = runtime.Version()

	var d daemonVersion
	if err := getJSON(strings.TrimRight(baseURL, "/"), "/api/version", &d); err != nil {
		rep.DaemonError = err.Error()
	} else {
		rep.Daemon = &d
	}

	if jsonOutput {
		return printJSON(rep)
	}
	fmt.Print(renderVersion(rep))
	return nil
}

func renderVersion(rep versionReport) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", colorize(dim, padRight(label, 8)), value)
	}

	b.WriteString("\n" + header("  TLE2JSON VERSION") + "\n")
	b.WriteString(rule(38) + "\n")
	line("CLI:", rep.CLI.Version+" ("+rep.CLI.GoVersion+")")
	if rep.Daemon == nil {
		line("Daemon:", colorize(red, "unreachable: "+rep.DaemonError))
	} else {
		line("Daemon:", rep.Daemon.Version+" ("+rep.Daemon.GoVersion+")")
		line("Built:", formatSince(rep.Daemon.BuiltAt))
		if rep.Skewed() {
			b.WriteString("  " + colorize(yellow, "warning: CLI and daemon versions differ") + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
