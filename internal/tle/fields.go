package tle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind is how a fixed-width field is decoded.
type FieldKind int

const (
	Skip FieldKind = iota
	Integer
	Decimal
	String
)

func (k FieldKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	default:
		return "skip"
	}
}

// Field describes one column range of a data line.
type Field struct {
	Name  string
	Width int
	Kind  FieldKind
}

// Layout is an ordered list of fields covering a line from column 1.
type Layout []Field

// Width returns the total number of columns the layout consumes.
func (l Layout) Width() int {
	n := 0
	for _, f := range l {
		n += f.Width
	}
	return n
}

// Field names shared by the line layouts.
const (
	FieldLineNumber       = "line_number"
	FieldCatalogNumber    = "catalog_number"
	FieldClassification   = "classification"
	FieldLaunchYear       = "launch_year"
	FieldLaunchNumber     = "launch_number"
	FieldLaunchPiece      = "launch_piece"
	FieldEpochYear        = "epoch_year"
	FieldEpochDay         = "epoch_day"
	FieldMeanMotionDot    = "mean_motion_dot"
	FieldMeanMotionDotDot = "mean_motion_dot_dot"
	FieldBStar            = "b_star"
	FieldEphemerisType    = "ephemeris_type"
	FieldElementSetNumber = "element_set_number"
	FieldChecksum         = "checksum"
	FieldInclination      = "inclination"
	FieldRightAscension   = "right_ascension"
	FieldEccentricity     = "eccentricity"
	FieldArgOfPeriapsis   = "argument_of_periapsis"
	FieldMeanAnomaly      = "mean_anomaly"
	FieldMeanMotion       = "mean_motion"
	FieldRevolutions      = "revolutions_at_epoch"
)

func skip(n int) Field { return Field{Width: n, Kind: Skip} }

// Line1Layout is the column layout of the first data line.
var Line1Layout = Layout{
	{FieldLineNumber, 1, Integer},
	skip(1),
	{FieldCatalogNumber, 5, Integer},
	{FieldClassification, 1, String},
	skip(1),
	{FieldLaunchYear, 2, Integer},
	{FieldLaunchNumber, 3, Integer},
	{FieldLaunchPiece, 3, String},
	skip(1),
	{FieldEpochYear, 2, Integer},
	{FieldEpochDay, 12, Decimal},
	skip(1),
	{FieldMeanMotionDot, 10, Decimal},
	skip(1),
	{FieldMeanMotionDotDot, 8, String},
	skip(1),
	{FieldBStar, 8, String},
	skip(1),
	{FieldEphemerisType, 1, Integer},
	skip(1),
	{FieldElementSetNumber, 4, Integer},
	{FieldChecksum, 1, Integer},
}

// Line2Layout is the column layout of the second data line.
var Line2Layout = Layout{
	{FieldLineNumber, 1, Integer},
	skip(1),
	{FieldCatalogNumber, 5, Integer},
	skip(1),
	{FieldInclination, 8, Decimal},
	skip(1),
	{FieldRightAscension, 8, Decimal},
	skip(1),
	{FieldEccentricity, 7, String},
	skip(1),
	{FieldArgOfPeriapsis, 8, Decimal},
	skip(1),
	{FieldMeanAnomaly, 8, Decimal},
	skip(1),
	{FieldMeanMotion, 11, Decimal},
	{FieldRevolutions, 5, Integer},
	{FieldChecksum, 1, Integer},
}

// Value is one decoded field. Exactly one of Int, Float or Raw is meaningful,
// depending on Field.Kind; Raw always holds the source columns.
type Value struct {
	Field Field
	Raw   string
	Int   int
	Float float64
}

// Fields is the ordered result of Extract.
type Fields []Value

// Get returns the value for the named field.
func (fs Fields) Get(name string) (Value, bool) {
	for _, v := range fs {
		if v.Field.Name == name {
			return v, true
		}
	}
	return Value{}, false
}

// Int returns the integer value of the named field, or 0 if absent.
func (fs Fields) Int(name string) int {
	v, _ := fs.Get(name)
	return v.Int
}

// Float returns the decimal value of the named field, or 0 if absent.
func (fs Fields) Float(name string) float64 {
	v, _ := fs.Get(name)
	return v.Float
}

// Raw returns the raw substring of the named field, or "" if absent.
func (fs Fields) Raw(name string) string {
	v, _ := fs.Get(name)
	return v.Raw
}

var errNotFinite = errors.New("value is not finite")

// Extract slices line into the fields of layout, left to right by exact
// column width, and decodes each non-skip field by its kind. Columns past the
// end of the layout are ignored. A line too short for a field fails on that
// field rather than shifting later offsets.
func Extract(line string, layout Layout) (Fields, error) {
	out := make(Fields, 0, len(layout))
	pos := 0
	for _, f := range layout {
		end := pos + f.Width
		if end > len(line) {
			name := f.Name
			if name == "" {
				name = fmt.Sprintf("column %d", pos+1)
			}
			return nil, &FieldDecodeError{
				Field: name,
				Raw:   line[min(pos, len(line)):],
				Err:   fmt.Errorf("line has %d columns, field needs %d", len(line), end),
			}
		}
		raw := line[pos:end]
		pos = end

		if f.Kind == Skip {
			continue
		}

		v := Value{Field: f, Raw: raw}
		switch f.Kind {
		case Integer:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, &FieldDecodeError{Field: f.Name, Raw: raw, Err: err}
			}
			v.Int = n
		case Decimal:
			x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err == nil && (math.IsInf(x, 0) || math.IsNaN(x)) {
				err = errNotFinite
			}
			if err != nil {
				return nil, &FieldDecodeError{Field: f.Name, Raw: raw, Err: err}
			}
			v.Float = x
		}
		out = append(out, v)
	}
	return out, nil
}
