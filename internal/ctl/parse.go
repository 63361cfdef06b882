package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/large-farva/tle2json/internal/tle"
)

// ParseOptions configures the parse command.
type ParseOptions struct {
	Input  string // file path; "" or "-" reads stdin
	Strict bool
	Bulk   bool
	JSON   bool
}

// ParseError is returned when the daemon rejects the element set. Kind is
// one of the tle error kinds ("structure", "checksum", ...).
type ParseError struct {
	Kind    string
	Message string
}

func (e *ParseError) Error() string {
	return e.Kind + ": " + e.Message
}

// Parse sends an element set to the daemon's parser and renders the result.
func Parse(baseURL string, opts ParseOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	text, err := readInput(opts.Input)
	if err != nil {
		return err
	}

	path := "/api/parse"
	var params []string
	if opts.Strict {
		params = append(params, "strict=1")
	}
	if opts.Bulk {
		params = append(params, "bulk=1")
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	status, body, err := postText(baseURL, path, text)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnprocessableEntity:
		var rej struct {
			Kind  string `json:"kind"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &rej); err != nil {
			return fmt.Errorf("decoding rejection: %w", err)
		}
		if opts.JSON {
			_ = printJSON(json.RawMessage(body))
		}
		return &ParseError{Kind: rej.Kind, Message: rej.Error}
	default:
		return fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}

	if opts.JSON {
		return printJSON(json.RawMessage(body))
	}

	if opts.Bulk {
		return renderBulk(body)
	}

	var rec tle.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(header(fmt.Sprintf("  ELEMENT SET %05d", rec.CatalogNumber)))
	fmt.Println(rule(50))
	printRecord(rec)
	return nil
}

func renderBulk(body []byte) error {
	var resp struct {
		Accepted int          `json:"accepted"`
		Rejected int          `json:"rejected"`
		Records  []tle.Record `json:"records"`
		Errors   []struct {
			Index int    `json:"index"`
			Kind  string `json:"kind"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s  %d accepted, %d rejected\n", header("BULK PARSE"), resp.Accepted, resp.Rejected)

	if len(resp.Records) > 0 {
		t := newTable("  ", "Catalog #", "Name", "Epoch")
		for _, r := range resp.Records {
			name := r.DisplayName()
			if name == "" {
				name = "-"
			}
			t.row(fmt.Sprintf("%05d", r.CatalogNumber), name, shortEpoch(r.Epoch))
		}
		t.flush()
	}

	if len(resp.Errors) > 0 {
		fmt.Println()
		for _, e := range resp.Errors {
			fmt.Printf("  %s set %d: %s %s\n", colorize(red, "REJECT"), e.Index, colorize(yellow, e.Kind), e.Error)
		}
	}
	fmt.Println()
	return nil
}

// printRecord renders a decoded record as aligned key/value lines.
func printRecord(r tle.Record) {
	field := func(key string, val any) {
		fmt.Printf("  %-24s %v\n", colorize(dim, key+":"), val)
	}
	if r.HasName() {
		field("name", r.DisplayName())
	}
	field("catalog_number", r.CatalogNumber)
	field("classification_type", r.ClassificationType)
	field("intl_designator", r.IntlDesignator)
	field("epoch", r.Epoch)
	field("mean_motion_dot", r.MeanMotionDot)
	field("mean_motion_dot_dot", r.MeanMotionDotDot)
	field("b_star", r.BStar)
	field("ephemeris_type", r.EphemerisType)
	field("element_set_number", r.ElementSetNumber)
	field("inclination", r.Inclination)
	field("right_ascension", r.RightAscension)
	field("eccentricity", r.Eccentricity)
	field("argument_of_periapsis", r.ArgumentOfPeriapsis)
	field("mean_anomaly", r.MeanAnomaly)
	field("mean_motion", r.MeanMotion)
	field("revolutions_at_epoch", r.RevolutionsAtEpoch)
	fmt.Println()
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
