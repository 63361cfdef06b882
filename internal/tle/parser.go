// Package tle parses NORAD Two-Line Element sets into decoded orbital
// element records.
//
// Input may be the two-line form (two data lines) or the three-line form
// (a name line followed by the two data lines). Both data lines must carry a
// valid modulo-10 check digit before any field is decoded. All functions in
// this package are pure and safe for concurrent use.
package tle

import (
	"fmt"
	"strings"
)

// Parser turns element set text into a Record.
//
// The zero value is lenient: it ignores the line-number markers of the data
// lines and does not compare the catalog numbers of line 1 and line 2. Strict
// enables both checks.
type Parser struct {
	Strict bool
}

// Parse decodes a single two- or three-line element set with a lenient
// parser.
func Parse(text string) (Record, error) {
	var p Parser
	return p.Parse(text)
}

// Parse decodes a single two- or three-line element set. It returns a
// *StructuralError, *ChecksumError, *FieldDecodeError or *ConsistencyError
// on failure and never a partial record.
func (p Parser) Parse(text string) (Record, error) {
	lines := splitLines(text)

	var l0 *Line0
	switch len(lines) {
	case 3:
		name := ParseLine0(lines[0])
		l0 = &name
	case 2:
	default:
		return Record{}, &StructuralError{Lines: len(lines)}
	}

	// Trailing blanks are trimmed from the data lines only; the name line
	// keeps its padding.
	data := []string{
		strings.TrimRight(lines[len(lines)-2], " \t"),
		strings.TrimRight(lines[len(lines)-1], " \t"),
	}

	if p.Strict {
		for i, l := range data {
			want := byte('1' + i)
			if len(l) < 2 || l[0] != want || l[1] != ' ' {
				return Record{}, &StructuralError{
					Lines:  len(lines),
					Reason: fmt.Sprintf("data line %d does not start with %q", i+1, string(want)+" "),
				}
			}
		}
	}

	for i, l := range data {
		if !VerifyChecksum(l) {
			return Record{}, &ChecksumError{Line: i + 1, Want: Checksum(l), Got: CheckDigit(l)}
		}
	}

	l1, err := ParseLine1(data[0])
	if err != nil {
		return Record{}, err
	}
	l2, err := ParseLine2(data[1])
	if err != nil {
		return Record{}, err
	}

	if p.Strict && l1.CatalogNumber != l2.CatalogNumber {
		return Record{}, &ConsistencyError{Line1Catalog: l1.CatalogNumber, Line2Catalog: l2.CatalogNumber}
	}

	return merge(l0, l1, l2), nil
}

// SetError ties a parse failure to the element set it came from in a bulk
// catalog.
type SetError struct {
	Index int    // position of the set within the catalog
	Text  string // the set as handed to the parser
	Err   error
}

func (e SetError) Error() string {
	return fmt.Sprintf("element set %d: %v", e.Index, e.Err)
}

func (e SetError) Unwrap() error { return e.Err }

// ParseAll splits a bulk catalog with SplitSets and parses each set. Records
// come back in catalog order; sets that fail are reported individually and
// do not stop the rest.
func (p Parser) ParseAll(text string) ([]Record, []SetError) {
	sets := SplitSets(text)
	records := make([]Record, 0, len(sets))
	var errs []SetError
	for i, s := range sets {
		rec, err := p.Parse(s)
		if err != nil {
			errs = append(errs, SetError{Index: i, Text: s, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

// SplitSets breaks a catalog made of concatenated two- and three-line sets
// into individual set texts. A data line pair ("1 " followed by "2 ") closes
// a set, taking the line just before it as the name when that line is not
// itself part of a pair. Lines that cannot belong to any set are returned as
// single-line sets so that parsing them reports a structural error.
func SplitSets(text string) []string {
	lines := splitLines(text)
	var sets []string
	name := ""
	haveName := false

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if hasMarker(l, '1') && i+1 < len(lines) && hasMarker(lines[i+1], '2') {
			set := l + "\n" + lines[i+1]
			if haveName {
				set = name + "\n" + set
			}
			sets = append(sets, set)
			haveName = false
			i++
			continue
		}
		if haveName {
			sets = append(sets, name)
		}
		name, haveName = l, true
	}
	if haveName {
		sets = append(sets, name)
	}
	return sets
}

func hasMarker(line string, marker byte) bool {
	return len(line) >= 2 && line[0] == marker && line[1] == ' '
}

// splitLines breaks text on any run of CR/LF characters and drops lines that
// are empty or whitespace only. The remaining lines are returned as written.
func splitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' })
	lines := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
