package tle

import "strings"

// Line0 is the partial record carried by the optional name line.
type Line0 struct {
	Name string
}

// Line1 is the partial record carried by the first data line.
type Line1 struct {
	LineNumber         int
	CatalogNumber      int
	ClassificationType string
	IntlDesignator     string
	Epoch              string
	MeanMotionDot      float64
	MeanMotionDotDot   float64
	BStar              float64
	EphemerisType      int
	ElementSetNumber   int
}

// Line2 is the partial record carried by the second data line.
type Line2 struct {
	LineNumber          int
	CatalogNumber       int
	Inclination         float64
	RightAscension      float64
	Eccentricity        float64
	ArgumentOfPeriapsis float64
	MeanAnomaly         float64
	MeanMotion          float64
	RevolutionsAtEpoch  int
}

// ParseLine0 extracts the satellite name, dropping a leading "0 " marker.
func ParseLine0(line string) Line0 {
	return Line0{Name: strings.TrimPrefix(line, "0 ")}
}

// ParseLine1 decodes the first data line. The derivative terms are returned
// in NORAD's stored convention: mean motion dot doubled, dot-dot times six.
func ParseLine1(line string) (Line1, error) {
	fs, err := Extract(line, Line1Layout)
	if err != nil {
		return Line1{}, onLine(err, 1)
	}

	ddot, err := DecodeExponent(fs.Raw(FieldMeanMotionDotDot), true)
	if err != nil {
		return Line1{}, fieldErr(1, FieldMeanMotionDotDot, fs.Raw(FieldMeanMotionDotDot), err)
	}
	bstar, err := DecodeExponent(fs.Raw(FieldBStar), true)
	if err != nil {
		return Line1{}, fieldErr(1, FieldBStar, fs.Raw(FieldBStar), err)
	}

	epochYear := ExpandYear(fs.Int(FieldEpochYear))

	return Line1{
		LineNumber:         fs.Int(FieldLineNumber),
		CatalogNumber:      fs.Int(FieldCatalogNumber),
		ClassificationType: fs.Raw(FieldClassification),
		IntlDesignator:     IntlDesignator(fs.Int(FieldLaunchYear), fs.Int(FieldLaunchNumber), fs.Raw(FieldLaunchPiece)),
		Epoch:              EpochTimestamp(epochYear, fs.Float(FieldEpochDay)),
		MeanMotionDot:      fs.Float(FieldMeanMotionDot) * 2,
		MeanMotionDotDot:   ddot * 6,
		BStar:              bstar,
		EphemerisType:      fs.Int(FieldEphemerisType),
		ElementSetNumber:   fs.Int(FieldElementSetNumber),
	}, nil
}

// ParseLine2 decodes the second data line.
func ParseLine2(line string) (Line2, error) {
	fs, err := Extract(line, Line2Layout)
	if err != nil {
		return Line2{}, onLine(err, 2)
	}

	ecc, err := DecodeEccentricity(fs.Raw(FieldEccentricity))
	if err != nil {
		return Line2{}, fieldErr(2, FieldEccentricity, fs.Raw(FieldEccentricity), err)
	}

	return Line2{
		LineNumber:          fs.Int(FieldLineNumber),
		CatalogNumber:       fs.Int(FieldCatalogNumber),
		Inclination:         fs.Float(FieldInclination),
		RightAscension:      fs.Float(FieldRightAscension),
		Eccentricity:        ecc,
		ArgumentOfPeriapsis: fs.Float(FieldArgOfPeriapsis),
		MeanAnomaly:         fs.Float(FieldMeanAnomaly),
		MeanMotion:          fs.Float(FieldMeanMotion),
		RevolutionsAtEpoch:  fs.Int(FieldRevolutions),
	}, nil
}

func fieldErr(line int, field, raw string, err error) error {
	return &FieldDecodeError{Line: line, Field: field, Raw: raw, Err: err}
}

// onLine stamps the physical data line onto a FieldDecodeError from Extract.
func onLine(err error, line int) error {
	if fe, ok := err.(*FieldDecodeError); ok {
		fe.Line = line
	}
	return err
}
