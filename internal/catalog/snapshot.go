package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akhenakh/sgp4"

	"github.com/large-farva/tle2json/internal/tle"
)

// maxReportedErrors caps how many rejected sets are listed in a Summary.
const maxReportedErrors = 20

// Entry is one accepted element set.
type Entry struct {
	Record tle.Record `json:"record"`
	Line1  string     `json:"line1"`
	Line2  string     `json:"line2"`
}

// Snapshot is an immutable view of one catalog load.
type Snapshot struct {
	Source   string
	LoadedAt time.Time
	Rejected int

	entries []Entry
	byID    map[int]int
}

// Summary reports the outcome of a load.
type Summary struct {
	Source   string   `json:"source"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// Len returns the number of accepted entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Lookup returns the entry for a catalog number.
func (s *Snapshot) Lookup(catalogNumber int) (Entry, bool) {
	i, ok := s.byID[catalogNumber]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// List returns entries whose name contains filter, case-insensitively.
func (s *Snapshot) List(filter string) []Entry {
	if filter == "" {
		out := make([]Entry, len(s.entries))
		copy(out, s.entries)
		return out
	}
	upper := strings.ToUpper(filter)
	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToUpper(e.Record.DisplayName()), upper) {
			out = append(out, e)
		}
	}
	return out
}

// buildSnapshot parses every set in raw. A later set with the same catalog
// number replaces an earlier one.
func buildSnapshot(raw, source string, p tle.Parser, crossCheck bool) (*Snapshot, Summary) {
	snap := &Snapshot{
		Source:   source,
		LoadedAt: time.Now().UTC(),
		byID:     make(map[int]int),
	}
	sum := Summary{Source: source}

	reject := func(i int, err error) {
		snap.Rejected++
		if len(sum.Errors) < maxReportedErrors {
			sum.Errors = append(sum.Errors, fmt.Sprintf("set %d: %v", i, err))
		}
	}

	for i, set := range tle.SplitSets(raw) {
		rec, err := p.Parse(set)
		if err != nil {
			reject(i, err)
			continue
		}

		lines := strings.Split(set, "\n")
		e := Entry{
			Record: rec,
			Line1:  strings.TrimRight(lines[len(lines)-2], " \t"),
			Line2:  strings.TrimRight(lines[len(lines)-1], " \t"),
		}

		if crossCheck {
			if err := crossValidate(e); err != nil {
				reject(i, err)
				continue
			}
		}

		if idx, dup := snap.byID[rec.CatalogNumber]; dup {
			snap.entries[idx] = e
			continue
		}
		snap.byID[rec.CatalogNumber] = len(snap.entries)
		snap.entries = append(snap.entries, e)
	}

	sum.Accepted = len(snap.entries)
	sum.Rejected = snap.Rejected
	return snap, sum
}

// crossValidate hands the set to the independent sgp4 parser and checks that
// it agrees on the catalog number.
func crossValidate(e Entry) error {
	name := strings.TrimSpace(e.Record.DisplayName())
	if name == "" {
		name = strconv.Itoa(e.Record.CatalogNumber)
	}
	t, err := sgp4.ParseTLE(name + "\n" + e.Line1 + "\n" + e.Line2)
	if err != nil {
		return fmt.Errorf("sgp4 rejected element set: %w", err)
	}
	if t.SatelliteNumber != e.Record.CatalogNumber {
		return fmt.Errorf("sgp4 reads catalog number %d, parser read %d", t.SatelliteNumber, e.Record.CatalogNumber)
	}
	return nil
}
