package ctl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LogsOptions configures the logs command.
type LogsOptions struct {
	Level string
	Limit int
	Tail  bool
	JSON  bool
}

// Logs shows recent daemon log messages, or streams them live with --tail.
func Logs(baseURL string, opts LogsOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	// --tail mode: use WebSocket watch with log filter.
	if opts.Tail {
		return Watch(baseURL, WatchOptions{
			Filter: []string{"log"},
			JSON:   opts.JSON,
		})
	}

	q := url.Values{}
	if opts.Level != "" {
		q.Set("level", opts.Level)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/api/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Logs []struct {
			TS        string `json:"ts"`
			Level     string `json:"level"`
			Message   string `json:"message"`
			Component string `json:"component"`
		} `json:"logs"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  DAEMON LOGS"))
	fmt.Println(rule(70))

	if len(resp.Logs) == 0 {
		fmt.Println("  No log entries found.")
	}
	for _, entry := range resp.Logs {
		ts := entry.TS
		if t, err := time.Parse(time.RFC3339Nano, entry.TS); err == nil {
			ts = t.Local().Format("15:04:05")
		}
		fmt.Printf("  %s %s  [%s] %s\n",
			ts,
			formatLogLevel(entry.Level),
			entry.Component,
			entry.Message,
		)
	}

	fmt.Println()
	return nil
}

// formatLogLevel returns a colored, fixed-width log level label.
func formatLogLevel(level string) string {
	switch level {
	case "info":
		return colorize(green, "INFO ")
	case "warn":
		return colorize(yellow, "WARN ")
	case "error":
		return colorize(red, "ERROR")
	case "debug":
		return colorize(dim, "DEBUG")
	default:
		return padRight(level, 5)
	}
}
