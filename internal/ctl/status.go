package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DataRoot      string `json:"data_root"`
	Strict        bool   `json:"strict"`
	Paused        bool   `json:"paused"`
	WSClients     int    `json:"ws_clients"`
	Parse         struct {
		OK     int64 `json:"ok"`
		Failed int64 `json:"failed"`
	} `json:"parse"`
	Catalog *struct {
		Source   string `json:"source"`
		LoadedAt string `json:"loaded_at"`
		Entries  int    `json:"entries"`
		Rejected int    `json:"rejected"`
	} `json:"catalog,omitempty"`
	Disk *struct {
		TotalBytes  int64   `json:"total_bytes"`
		UsedPercent float64 `json:"used_percent"`
	} `json:"disk,omitempty"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)
	stateStr := colorize(stateColor(s.State), s.State)

	fmt.Println()
	fmt.Println(header("  TLED STATUS"))
	fmt.Println(rule(38))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), s.Name)
	fmt.Printf("  %-12s %s\n", colorize(dim, "State:"), stateStr)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Data:"), s.DataRoot)
	fmt.Printf("  %-12s %v\n", colorize(dim, "Strict:"), s.Strict)
	if s.Catalog != nil {
		fmt.Printf("  %-12s %d sets from %s (%d rejected)\n", colorize(dim, "Catalog:"),
			s.Catalog.Entries, s.Catalog.Source, s.Catalog.Rejected)
	} else {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Catalog:"), colorize(yellow, "not loaded"))
	}
	fmt.Printf("  %-12s %d ok, %d failed\n", colorize(dim, "Parsed:"), s.Parse.OK, s.Parse.Failed)
	fmt.Printf("  %-12s %d\n", colorize(dim, "Watchers:"), s.WSClients)
	if s.Disk != nil {
		fmt.Printf("  %-12s %.1f%% of %s used\n", colorize(dim, "Disk:"), s.Disk.UsedPercent, formatBytes(s.Disk.TotalBytes))
	}
	fmt.Printf("  %-12s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Println()

	return nil
}
