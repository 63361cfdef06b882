package tle

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by the parser matches exactly
// one of these through errors.Is.
var (
	ErrStructure   = errors.New("tle: malformed structure")
	ErrChecksum    = errors.New("tle: checksum mismatch")
	ErrFieldDecode = errors.New("tle: field decode failure")
	ErrConsistency = errors.New("tle: inconsistent element set")
)

// StructuralError reports input that does not split into a two- or
// three-line element set, or (in strict mode) a data line whose line-number
// marker is wrong.
type StructuralError struct {
	Lines  int
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("tle: malformed structure: %s", e.Reason)
	}
	return fmt.Sprintf("tle: expected 2 or 3 lines, got %d", e.Lines)
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructure }

// ChecksumError reports a data line whose computed checksum disagrees with
// its trailing check digit. Got is -1 when the trailing character is not a
// digit.
type ChecksumError struct {
	Line int // 1 or 2
	Want int
	Got  int
}

func (e *ChecksumError) Error() string {
	if e.Got < 0 {
		return fmt.Sprintf("tle: line %d checksum mismatch: computed %d, check digit missing", e.Line, e.Want)
	}
	return fmt.Sprintf("tle: line %d checksum mismatch: computed %d, check digit %d", e.Line, e.Want, e.Got)
}

func (e *ChecksumError) Is(target error) bool { return target == ErrChecksum }

// FieldDecodeError reports a fixed-width field that could not be read as its
// declared kind, including fields that run past the end of the line.
type FieldDecodeError struct {
	Line  int
	Field string
	Raw   string
	Err   error
}

func (e *FieldDecodeError) Error() string {
	prefix := fmt.Sprintf("tle: field %q", e.Field)
	if e.Line > 0 {
		prefix = fmt.Sprintf("tle: line %d field %q", e.Line, e.Field)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: cannot decode %q", prefix, e.Raw)
	}
	return fmt.Sprintf("%s: cannot decode %q: %v", prefix, e.Raw, e.Err)
}

func (e *FieldDecodeError) Is(target error) bool { return target == ErrFieldDecode }

func (e *FieldDecodeError) Unwrap() error { return e.Err }

// ConsistencyError is only produced in strict mode, when line 1 and line 2
// describe different catalog numbers.
type ConsistencyError struct {
	Line1Catalog int
	Line2Catalog int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("tle: catalog number mismatch: line 1 has %d, line 2 has %d", e.Line1Catalog, e.Line2Catalog)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }

// Kind returns a short machine-readable name for the error kind, or "" when
// err is not a parse error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrStructure):
		return "structure"
	case errors.Is(err, ErrChecksum):
		return "checksum"
	case errors.Is(err, ErrFieldDecode):
		return "field_decode"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	default:
		return ""
	}
}

// ExitCode maps an error to the process exit status used by the command-line
// tools. Non-parse errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Kind(err) {
	case "structure":
		return 3
	case "checksum":
		return 4
	case "field_decode":
		return 5
	case "consistency":
		return 6
	default:
		return 1
	}
}
