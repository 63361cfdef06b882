package tle

import "time"

// Record is a fully decoded element set. Field names and JSON keys follow
// the tle2json output format; Name is nil for two-line input.
type Record struct {
	Name                *string `json:"name,omitempty"`
	CatalogNumber       int     `json:"catalog_number"`
	ClassificationType  string  `json:"classification_type"`
	IntlDesignator      string  `json:"intl_designator"`
	Epoch               string  `json:"epoch"`
	MeanMotionDot       float64 `json:"mean_motion_dot"`
	MeanMotionDotDot    float64 `json:"mean_motion_dot_dot"`
	BStar               float64 `json:"b_star"`
	EphemerisType       int     `json:"ephemeris_type"`
	ElementSetNumber    int     `json:"element_set_number"`
	Inclination         float64 `json:"inclination"`
	RightAscension      float64 `json:"right_ascension"`
	Eccentricity        float64 `json:"eccentricity"`
	ArgumentOfPeriapsis float64 `json:"argument_of_periapsis"`
	MeanAnomaly         float64 `json:"mean_anomaly"`
	MeanMotion          float64 `json:"mean_motion"`
	RevolutionsAtEpoch  int     `json:"revolutions_at_epoch"`
}

// merge is a shallow union of the partial line records. Line 2's catalog
// number is the one kept.
func merge(l0 *Line0, l1 Line1, l2 Line2) Record {
	r := Record{
		CatalogNumber:       l2.CatalogNumber,
		ClassificationType:  l1.ClassificationType,
		IntlDesignator:      l1.IntlDesignator,
		Epoch:               l1.Epoch,
		MeanMotionDot:       l1.MeanMotionDot,
		MeanMotionDotDot:    l1.MeanMotionDotDot,
		BStar:               l1.BStar,
		EphemerisType:       l1.EphemerisType,
		ElementSetNumber:    l1.ElementSetNumber,
		Inclination:         l2.Inclination,
		RightAscension:      l2.RightAscension,
		Eccentricity:        l2.Eccentricity,
		ArgumentOfPeriapsis: l2.ArgumentOfPeriapsis,
		MeanAnomaly:         l2.MeanAnomaly,
		MeanMotion:          l2.MeanMotion,
		RevolutionsAtEpoch:  l2.RevolutionsAtEpoch,
	}
	if l0 != nil {
		name := l0.Name
		r.Name = &name
	}
	return r
}

// HasName reports whether the record came from a three-line set.
func (r Record) HasName() bool { return r.Name != nil }

// DisplayName returns the satellite name, or "" for two-line records.
func (r Record) DisplayName() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// EpochTime parses the Epoch field back into a time.Time.
func (r Record) EpochTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.Epoch)
}
