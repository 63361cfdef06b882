package ctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Pause stops periodic catalog refreshes on the daemon.
func Pause(baseURL string, jsonOutput bool) error {
	return runnerControl(baseURL, "/api/pause", "PAUSED", jsonOutput)
}

// Resume restarts periodic catalog refreshes.
func Resume(baseURL string, jsonOutput bool) error {
	return runnerControl(baseURL, "/api/resume", "RESUMED", jsonOutput)
}

type commandResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Accepted int    `json:"accepted,omitempty"`
	Rejected int    `json:"rejected,omitempty"`
}

// runnerControl posts a refresh-runner command. The daemon answers failed
// commands with a non-2xx status and a JSON body, which is decoded rather
// than surfaced as a transport error.
func runnerControl(baseURL, path, label string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	status, body, err := postText(baseURL, path, "")
	if err != nil {
		return err
	}

	var result commandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
	} else if result.OK {
		fmt.Printf("\n  %s  %s\n\n", colorize(green, label), result.Message)
	} else {
		fmt.Printf("\n  %s  %s\n\n", colorize(red, "ERROR"), result.Error)
	}

	if !result.OK || status != http.StatusOK {
		return fmt.Errorf("%s failed", strings.TrimPrefix(path, "/api/"))
	}
	return nil
}
