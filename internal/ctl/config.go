package ctl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/large-farva/tle2json/internal/config"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	var cfg config.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	// The daemon's config is shown in its native TOML form so it can be
	// pasted straight into a profile.
	b, err := config.Encode(cfg)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(header("  DAEMON CONFIGURATION"))
	fmt.Println(rule(50))
	fmt.Println()
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		if strings.HasPrefix(line, "[") {
			fmt.Printf("  %s\n", colorize(bold, line))
			continue
		}
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()

	return nil
}

// ConfigList lists the config profiles available on the daemon host.
func ConfigList(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		ConfigDir string               `json:"config_dir"`
		Active    string               `json:"active"`
		Profiles  []config.ProfileInfo `json:"profiles"`
	}
	if err := getJSON(baseURL, "/api/config/profiles", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  CONFIG PROFILES"))
	fmt.Printf("  %s %s\n", colorize(dim, "dir:"), resp.ConfigDir)

	if len(resp.Profiles) == 0 {
		fmt.Println("\n  No profiles found.")
		fmt.Println()
		return nil
	}

	t := newTable("  ", "", "Profile", "Path")
	for _, p := range resp.Profiles {
		mark := " "
		if p.Path == resp.Active {
			mark = "*"
		}
		t.row(mark, p.Name, p.Path)
	}
	t.flush()
	fmt.Println()
	return nil
}
