package ctl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/large-farva/tle2json/internal/catalog"
)

// CatalogOptions configures the catalog command.
type CatalogOptions struct {
	Name  string
	Count int
	JSON  bool
}

// Catalog lists element sets held by the daemon.
func Catalog(baseURL string, opts CatalogOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	q := url.Values{}
	if opts.Name != "" {
		q.Set("name", opts.Name)
	}
	if opts.Count > 0 {
		q.Set("count", strconv.Itoa(opts.Count))
	}
	path := "/api/catalog"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Source   string          `json:"source"`
		LoadedAt string          `json:"loaded_at"`
		Total    int             `json:"total"`
		Entries  []catalog.Entry `json:"entries"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  ELEMENT SET CATALOG"))
	fmt.Printf("  %s %s   %s %s\n",
		colorize(dim, "source:"), resp.Source,
		colorize(dim, "loaded:"), formatSince(resp.LoadedAt))

	if len(resp.Entries) == 0 {
		fmt.Println("\n  No matching element sets.")
		fmt.Println()
		return nil
	}

	t := newTable("  ", "Catalog #", "Name", "Intl Designator", "Epoch", "Incl", "Rev/day")
	for _, e := range resp.Entries {
		r := e.Record
		name := r.DisplayName()
		if name == "" {
			name = "-"
		}
		t.row(
			fmt.Sprintf("%05d", r.CatalogNumber),
			name,
			r.IntlDesignator,
			shortEpoch(r.Epoch),
			fmt.Sprintf("%.4f", r.Inclination),
			fmt.Sprintf("%.8f", r.MeanMotion),
		)
	}
	t.flush()

	if len(resp.Entries) < resp.Total {
		fmt.Printf("\n  %s\n", colorize(dim, fmt.Sprintf("showing %d of %d", len(resp.Entries), resp.Total)))
	}
	fmt.Println()
	return nil
}

// Lookup shows one element set by catalog number.
func Lookup(baseURL string, catalogNumber int, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var e catalog.Entry
	if err := getJSON(baseURL, "/api/catalog/"+strconv.Itoa(catalogNumber), &e); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(e)
	}

	fmt.Println()
	fmt.Println(header(fmt.Sprintf("  CATALOG %05d", e.Record.CatalogNumber)))
	fmt.Println(rule(69))
	fmt.Printf("  %s\n", colorize(dim, e.Line1))
	fmt.Printf("  %s\n", colorize(dim, e.Line2))
	printRecord(e.Record)
	return nil
}

// CatalogInfo shows catalog cache status and the outcome of the last load.
func CatalogInfo(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		Cache    catalog.CacheInfo `json:"cache"`
		LastLoad *catalog.Summary  `json:"last_load"`
	}
	if err := getJSON(baseURL, "/api/catalog/info", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	c := resp.Cache
	fmt.Println()
	fmt.Println(header("  CATALOG CACHE INFO"))
	fmt.Println(rule(50))
	fmt.Printf("  Cache file: %s\n", c.Path)
	fmt.Printf("  Source:     %s\n", c.SourceURL)

	switch {
	case !c.Exists:
		fmt.Printf("  Status:     %s\n", colorize(red, "NOT FOUND"))
	case c.Fresh:
		fmt.Printf("  Status:     %s\n", colorize(green, "FRESH"))
	default:
		fmt.Printf("  Status:     %s\n", colorize(yellow, "STALE"))
	}

	if c.Exists {
		fmt.Printf("  Age:        %s\n", formatDuration(time.Duration(c.AgeS)*time.Second))
		fmt.Printf("  Last fetch: %s\n", formatSince(c.ModTime))
		fmt.Printf("  Size:       %s\n", formatBytes(c.Size))
	}
	fmt.Printf("  Max age:    %dh\n", c.MaxAgeH)

	if l := resp.LastLoad; l != nil {
		fmt.Println()
		fmt.Printf("  Last load:  %d accepted, %d rejected (from %s)\n", l.Accepted, l.Rejected, l.Source)
		for _, e := range l.Errors {
			fmt.Printf("    %s\n", colorize(dim, e))
		}
	}
	fmt.Println()
	return nil
}

// Refresh forces the daemon to re-download the catalog.
func Refresh(baseURL string, jsonOutput bool) error {
	return runnerControl(baseURL, "/api/catalog/refresh", "REFRESHED", jsonOutput)
}

func shortEpoch(epoch string) string {
	t, err := time.Parse(time.RFC3339Nano, epoch)
	if err != nil {
		return epoch
	}
	return t.Format("2006-01-02 15:04:05")
}
