package ctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type healthReport struct {
	Healthy bool                      `json:"healthy"`
	Checks  map[string]map[string]any `json:"checks"`
}

// Health checks daemon liveness and component health via GET /healthz.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequest(http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		if jsonOutput {
			return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
		}
		return err
	}
	defer resp.Body.Close()

	var report healthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("decoding health report (HTTP %d): %w", resp.StatusCode, err)
	}

	if jsonOutput {
		return printJSON(report)
	}

	fmt.Println()
	if report.Healthy {
		fmt.Printf("  %s  tled is healthy at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	} else {
		fmt.Printf("  %s  tled returned HTTP %d at %s\n", colorize(red, "UNHEALTHY"), resp.StatusCode, colorize(dim, baseURL))
	}

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := report.Checks[name]
		mark := colorize(green, "ok  ")
		if ok, _ := c["ok"].(bool); !ok {
			mark = colorize(red, "FAIL")
		}
		detail := ""
		if e, ok := c["error"].(string); ok {
			detail = e
		} else if p, ok := c["path"].(string); ok {
			detail = p
		} else if src, ok := c["source"].(string); ok {
			detail = src
		}
		fmt.Printf("    %s %s %s\n", mark, padRight(name, 14), colorize(dim, detail))
	}
	fmt.Println()

	return nil
}
