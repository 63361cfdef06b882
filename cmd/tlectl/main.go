// Tlectl is the command-line client for a running tled instance. It connects
// over HTTP and WebSocket to query status, parse element sets, browse the
// catalog, and stream live events from the daemon.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/large-farva/tle2json/internal/ctl"
	"github.com/large-farva/tle2json/internal/tle"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8080", "tled base URL (e.g. http://192.168.8.1:8080)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter parsed,log)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --name are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Query commands ────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "config-list":
		err = ctl.ConfigList(*host, *jsonOut)

	case "logs":
		opts := ctl.LogsOptions{JSON: *jsonOut}
		logFlags := pflag.NewFlagSet("logs", pflag.ExitOnError)
		logFlags.StringVar(&opts.Level, "level", "", "Filter by log level (debug, info, warn, error)")
		logFlags.IntVar(&opts.Limit, "limit", 0, "Limit number of log entries shown")
		logFlags.BoolVar(&opts.Tail, "tail", false, "Stream live log events (like watch --filter log)")
		_ = logFlags.Parse(subArgs)
		err = ctl.Logs(*host, opts)

	// ── Parser ────────────────────────────────────────────────────
	case "parse":
		opts := ctl.ParseOptions{JSON: *jsonOut}
		parseFlags := pflag.NewFlagSet("parse", pflag.ExitOnError)
		parseFlags.BoolVar(&opts.Strict, "strict", false, "Require line markers and matching catalog numbers")
		parseFlags.BoolVar(&opts.Bulk, "bulk", false, "Parse a multi-set catalog")
		_ = parseFlags.Parse(subArgs)
		if parseFlags.NArg() > 0 {
			opts.Input = parseFlags.Arg(0)
		}
		err = ctl.Parse(*host, opts)

	// ── Catalog ───────────────────────────────────────────────────
	case "catalog":
		opts := ctl.CatalogOptions{JSON: *jsonOut}
		catFlags := pflag.NewFlagSet("catalog", pflag.ExitOnError)
		catFlags.StringVar(&opts.Name, "name", "", "Filter by name (case-insensitive substring)")
		catFlags.IntVar(&opts.Count, "count", 0, "Limit number of entries shown")
		_ = catFlags.Parse(subArgs)
		err = ctl.Catalog(*host, opts)

	case "lookup":
		if len(subArgs) != 1 {
			fmt.Fprintln(os.Stderr, "usage: tlectl lookup <catalog-number>")
			os.Exit(2)
		}
		id, convErr := strconv.Atoi(subArgs[0])
		if convErr != nil {
			fmt.Fprintf(os.Stderr, "error: invalid catalog number %q\n", subArgs[0])
			os.Exit(2)
		}
		err = ctl.Lookup(*host, id, *jsonOut)

	case "catalog-info":
		err = ctl.CatalogInfo(*host, *jsonOut)

	// ── Control commands ──────────────────────────────────────────
	case "refresh":
		err = ctl.Refresh(*host, *jsonOut)

	case "pause":
		err = ctl.Pause(*host, *jsonOut)

	case "resume":
		err = ctl.Resume(*host, *jsonOut)

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		opts := ctl.WatchOptions{JSON: *jsonOut}
		watchFlags := pflag.NewFlagSet("watch", pflag.ExitOnError)
		watchFlags.StringSliceVar(&opts.Filter, "filter", *filter, "Event types to show")
		_ = watchFlags.Parse(subArgs)
		err = ctl.Watch(*host, opts)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var pe *ctl.ParseError
		if errors.As(err, &pe) {
			os.Exit(exitForKind(pe.Kind))
		}
		os.Exit(1)
	}
}

// exitForKind maps a daemon-reported error kind to the same exit codes the
// offline tle2json command uses.
func exitForKind(kind string) int {
	switch kind {
	case "structure":
		return tle.ExitCode(tle.ErrStructure)
	case "checksum":
		return tle.ExitCode(tle.ErrChecksum)
	case "field_decode":
		return tle.ExitCode(tle.ErrFieldDecode)
	case "consistency":
		return tle.ExitCode(tle.ErrConsistency)
	}
	return 1
}

func usage() {
	fmt.Print(`
  tlectl - tle2json daemon control CLI

  USAGE
    tlectl [flags] <command> [command-flags]

  COMMANDS (query)
    status          Show daemon state, uptime, and catalog summary
    health          Check daemon and component health
    version         Show CLI and daemon version information
    config          Show the daemon's running configuration
    config-list     List available config profiles
    logs            Show recent daemon log messages

  COMMANDS (parser)
    parse [FILE]    Parse an element set from FILE or stdin

  COMMANDS (catalog)
    catalog         List element sets in the daemon's catalog
    lookup ID       Show one element set by catalog number
    catalog-info    Show catalog cache status and last load result

  COMMANDS (control)
    refresh         Force a catalog download from the network
    pause           Pause periodic catalog refreshes
    resume          Resume periodic catalog refreshes

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8080)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    parse:
        --strict            Require line markers and matching catalog numbers
        --bulk              Parse a multi-set catalog

    catalog:
        --name TEXT         Filter by name (case-insensitive substring)
        --count N           Limit number of entries shown

    logs:
        --level LEVEL       Filter by log level (debug, info, warn, error)
        --limit N           Limit number of log entries shown
        --tail              Stream live log events

  EXAMPLES
    tlectl status
    tlectl --json status
    tlectl parse iss.tle
    cat catalog.tle | tlectl parse --bulk
    tlectl catalog --name starlink --count 20
    tlectl lookup 25544
    tlectl catalog-info
    tlectl refresh
    tlectl logs --level error --limit 20
    tlectl --host http://192.168.8.1:8080 watch --filter parsed,catalog_refreshed

`)
}
