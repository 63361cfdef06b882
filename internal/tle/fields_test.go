package tle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutWidths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 69, Line1Layout.Width())
	assert.Equal(t, 69, Line2Layout.Width())
}

func TestExtractLine1(t *testing.T) {
	t.Parallel()

	fs, err := Extract(issLine1, Line1Layout)
	require.NoError(t, err)

	nonSkip := 0
	for _, f := range Line1Layout {
		if f.Kind != Skip {
			nonSkip++
		}
	}
	assert.Len(t, fs, nonSkip)

	assert.Equal(t, 1, fs.Int(FieldLineNumber))
	assert.Equal(t, 25544, fs.Int(FieldCatalogNumber))
	assert.Equal(t, "U", fs.Raw(FieldClassification))
	assert.Equal(t, 98, fs.Int(FieldLaunchYear))
	assert.Equal(t, 67, fs.Int(FieldLaunchNumber))
	assert.Equal(t, "A  ", fs.Raw(FieldLaunchPiece))
	assert.Equal(t, 15, fs.Int(FieldEpochYear))
	assert.Equal(t, 310.90801927, fs.Float(FieldEpochDay))
	assert.Equal(t, 0.00009031, fs.Float(FieldMeanMotionDot))
	assert.Equal(t, " 00000-0", fs.Raw(FieldMeanMotionDotDot))
	assert.Equal(t, " 13975-3", fs.Raw(FieldBStar))
	assert.Equal(t, 0, fs.Int(FieldEphemerisType))
	assert.Equal(t, 999, fs.Int(FieldElementSetNumber))
	assert.Equal(t, 7, fs.Int(FieldChecksum))
}

func TestExtractLine2(t *testing.T) {
	t.Parallel()

	fs, err := Extract(issLine2, Line2Layout)
	require.NoError(t, err)

	assert.Equal(t, 2, fs.Int(FieldLineNumber))
	assert.Equal(t, 25544, fs.Int(FieldCatalogNumber))
	assert.Equal(t, 51.644, fs.Float(FieldInclination))
	assert.Equal(t, 91.7795, fs.Float(FieldRightAscension))
	assert.Equal(t, "0006748", fs.Raw(FieldEccentricity))
	assert.Equal(t, 114.3849, fs.Float(FieldArgOfPeriapsis))
	assert.Equal(t, 28.9641, fs.Float(FieldMeanAnomaly))
	assert.Equal(t, 15.54854844, fs.Float(FieldMeanMotion))
	assert.Equal(t, 97024, fs.Int(FieldRevolutions))
	assert.Equal(t, 5, fs.Int(FieldChecksum))
}

func TestExtractCustomLayout(t *testing.T) {
	t.Parallel()

	layout := Layout{
		{Name: "a", Width: 2, Kind: Integer},
		{Width: 1, Kind: Skip},
		{Name: "b", Width: 4, Kind: Decimal},
		{Name: "c", Width: 3, Kind: String},
	}

	fs, err := Extract(" 7|-4.5x y", layout)
	require.NoError(t, err)
	require.Len(t, fs, 3)
	assert.Equal(t, "a", fs[0].Field.Name)
	assert.Equal(t, 7, fs[0].Int)
	assert.Equal(t, -4.5, fs[1].Float)
	assert.Equal(t, "x y", fs[2].Raw)

	_, ok := fs.Get("missing")
	assert.False(t, ok)
}

func TestExtractShortLine(t *testing.T) {
	t.Parallel()

	_, err := Extract(issLine1[:40], Line1Layout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldDecode))

	var fe *FieldDecodeError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldMeanMotionDot, fe.Field)
}

func TestExtractBadNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		layout Layout
		field  string
	}{
		{"letter in catalog number", "1 25A44U" + issLine1[8:], Line1Layout, FieldCatalogNumber},
		{"blank integer", "1      U" + issLine1[8:], Line1Layout, FieldCatalogNumber},
		{"garbage decimal", issLine2[:8] + " 51.6x40" + issLine2[16:], Line2Layout, FieldInclination},
		{"infinite decimal", issLine2[:8] + "     Inf" + issLine2[16:], Line2Layout, FieldInclination},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.line, tc.layout)
			var fe *FieldDecodeError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
			assert.ErrorIs(t, err, ErrFieldDecode)
		})
	}
}
