package tle

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

const issTLE = `0 ISS (ZARYA)
1 25544U 98067A   15310.90801927  .00009031  00000-0  13975-3 0  9997
2 25544  51.6440  91.7795 0006748 114.3849  28.9641 15.54854844970245`

var issRecord = Record{
	Name:                strPtr("ISS (ZARYA)"),
	CatalogNumber:       25544,
	ClassificationType:  "U",
	IntlDesignator:      "1998-067A",
	Epoch:               "2015-11-06T21:47:32.864928Z",
	MeanMotionDot:       1.8062e-04,
	MeanMotionDotDot:    0,
	BStar:               0.00013975,
	EphemerisType:       0,
	ElementSetNumber:    999,
	Inclination:         51.644,
	RightAscension:      91.7795,
	Eccentricity:        0.0006748,
	ArgumentOfPeriapsis: 114.3849,
	MeanAnomaly:         28.9641,
	MeanMotion:          15.54854844,
	RevolutionsAtEpoch:  97024,
}

func TestParseThreeLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tle  string
		want Record
	}{
		{"iss", issTLE, issRecord},
		{
			name: "galaxy 11",
			tle: `0 GALAXY 11
1 26038U 99071A   15310.22169616 -.00000295  00000-0  00000+0 0  9994
2 26038   0.0267 277.2252 0000968   4.9311 147.2041  1.00274057 58248`,
			want: Record{
				Name:                strPtr("GALAXY 11"),
				CatalogNumber:       26038,
				ClassificationType:  "U",
				IntlDesignator:      "1999-071A",
				Epoch:               "2015-11-06T05:19:14.548224Z",
				MeanMotionDot:       -5.9e-06,
				ElementSetNumber:    999,
				Inclination:         0.0267,
				RightAscension:      277.2252,
				Eccentricity:        9.68e-05,
				ArgumentOfPeriapsis: 4.9311,
				MeanAnomaly:         147.2041,
				MeanMotion:          1.00274057,
				RevolutionsAtEpoch:  5824,
			},
		},
		{
			name: "navstar 34",
			tle: `0 NAVSTAR 34 (USA 94)
1 22779U 93054A   15311.29545418 -.00000077  00000-0  00000+0 0  9991
2 22779  55.4766 358.0207 0101203 103.0330   3.0187  2.00460895162545`,
			want: Record{
				Name:                strPtr("NAVSTAR 34 (USA 94)"),
				CatalogNumber:       22779,
				ClassificationType:  "U",
				IntlDesignator:      "1993-054A",
				Epoch:               "2015-11-07T07:05:27.241152Z",
				MeanMotionDot:       -1.54e-06,
				ElementSetNumber:    999,
				Inclination:         55.4766,
				RightAscension:      358.0207,
				Eccentricity:        0.0101203,
				ArgumentOfPeriapsis: 103.033,
				MeanAnomaly:         3.0187,
				MeanMotion:          2.00460895,
				RevolutionsAtEpoch:  16254,
			},
		},
		{
			name: "elektron 3 with explicit signs",
			tle: `0 ELEKTRON 3
1   829U 64038A   15310.88362162 +.00000744 +00000-0 +20588-3 0  9997
2   829 060.7998 113.7384 2988688 041.9046 080.5695 09.12844870660659`,
			want: Record{
				Name:                strPtr("ELEKTRON 3"),
				CatalogNumber:       829,
				ClassificationType:  "U",
				IntlDesignator:      "1964-038A",
				Epoch:               "2015-11-06T21:12:24.907968Z",
				MeanMotionDot:       1.488e-05,
				BStar:               0.00020588,
				ElementSetNumber:    999,
				Inclination:         60.7998,
				RightAscension:      113.7384,
				Eccentricity:        0.2988688,
				ArgumentOfPeriapsis: 41.9046,
				MeanAnomaly:         80.5695,
				MeanMotion:          9.1284487,
				RevolutionsAtEpoch:  66065,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.tle)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, got.HasName())
		})
	}
}

func TestParseTwoLine(t *testing.T) {
	t.Parallel()

	got, err := Parse(issLine1 + "\n" + issLine2)
	require.NoError(t, err)

	want := issRecord
	want.Name = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.HasName())
	assert.Equal(t, "", got.DisplayName())

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"name"`)
}

func TestParseNameWithoutMarker(t *testing.T) {
	t.Parallel()

	got, err := Parse("ISS (ZARYA)             \r\n" + issLine1 + "\r\n" + issLine2 + "\r\n")
	require.NoError(t, err)
	assert.Equal(t, "ISS (ZARYA)             ", got.DisplayName())
}

func TestParseNameLineKeptAsWritten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{"marker and padding", "0 ISS (ZARYA)             ", "ISS (ZARYA)             "},
		{"marker only", "0 ", ""},
		{"leading blank kept", " ISS", " ISS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.line + "\n" + issLine1 + "   \n" + issLine2 + "\t\n")
			require.NoError(t, err)
			require.True(t, got.HasName())
			assert.Equal(t, tc.want, got.DisplayName())
		})
	}
}

func TestParseLineEndings(t *testing.T) {
	t.Parallel()

	variants := []string{
		strings.ReplaceAll(issTLE, "\n", "\r\n"),
		strings.ReplaceAll(issTLE, "\n", "\r"),
		"\n\n" + strings.ReplaceAll(issTLE, "\n", "\n\n\r\n") + "\n\n",
	}
	for _, v := range variants {
		got, err := Parse(v)
		require.NoError(t, err)
		if diff := cmp.Diff(issRecord, got); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParseChecksumFailure(t *testing.T) {
	t.Parallel()

	badLine1 := issLine1[:len(issLine1)-1] + "2"
	badLine2 := issLine2[:len(issLine2)-1] + "1"

	tests := []struct {
		name string
		tle  string
		line int
	}{
		{"both lines", badLine1 + "\n" + badLine2, 1},
		{"line 1 only", "0 ISS (ZARYA)\n" + badLine1 + "\n" + issLine2, 1},
		{"line 2 only", issLine1 + "\n" + badLine2, 2},
		{"missing check digit", issLine1 + "\n" + issLine2[:len(issLine2)-1] + "X", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Parse(tc.tle)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrChecksum)
			assert.Equal(t, Record{}, rec)

			var ce *ChecksumError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.line, ce.Line)
			assert.Equal(t, "checksum", Kind(err))
		})
	}
}

func TestParseStructuralErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":      "",
		"blank":      " \r\n \n",
		"one line":   issLine1,
		"four lines": "0 A\n0 B\n" + issLine1 + "\n" + issLine2,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructure)
			assert.NotErrorIs(t, err, ErrChecksum)
			assert.Equal(t, 3, ExitCode(err))
		})
	}
}

func TestParseFieldDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tle   string
		line  int
		field string
	}{
		{
			name:  "letter in catalog number",
			tle:   "1 2554AU 98067A   15310.90801927  .00009031  00000-0  13975-3 0  9993\n" + issLine2,
			line:  1,
			field: FieldCatalogNumber,
		},
		{
			name:  "line too short",
			tle:   "1 25544U 98067A   15310.9088\n" + issLine2,
			line:  1,
			field: FieldEpochDay,
		},
		{
			name:  "bad b-star mantissa",
			tle:   "1 25544U 98067A   15310.90801927  .00009031  00000-0  1397x-3 0  9992\n" + issLine2,
			line:  1,
			field: FieldBStar,
		},
		{
			name:  "blank inside eccentricity",
			tle:   issLine1 + "\n2 25544  51.6440  91.7795 00 6748 114.3849  28.9641 15.54854844970245",
			line:  2,
			field: FieldEccentricity,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.tle)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFieldDecode)

			var fe *FieldDecodeError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.line, fe.Line)
			assert.Equal(t, tc.field, fe.Field)
			assert.Equal(t, 5, ExitCode(err))
		})
	}
}

func TestParseStrict(t *testing.T) {
	t.Parallel()

	strict := Parser{Strict: true}

	t.Run("accepts well-formed input", func(t *testing.T) {
		got, err := strict.Parse(issTLE)
		require.NoError(t, err)
		assert.Equal(t, 25544, got.CatalogNumber)
	})

	t.Run("rejects swapped data lines", func(t *testing.T) {
		_, err := strict.Parse(issLine2 + "\n" + issLine1)
		assert.ErrorIs(t, err, ErrStructure)
	})

	mismatched := issLine1 + "\n2 25545  51.6440  91.7795 0006748 114.3849  28.9641 15.54854844970246"

	t.Run("rejects catalog mismatch", func(t *testing.T) {
		_, err := strict.Parse(mismatched)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConsistency)
		assert.Equal(t, 6, ExitCode(err))
	})

	t.Run("lenient keeps line 2 catalog number", func(t *testing.T) {
		got, err := Parse(mismatched)
		require.NoError(t, err)
		assert.Equal(t, 25545, got.CatalogNumber)
	})
}

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Parse(issTLE)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := Parse(issTLE)
			if err != nil {
				return
			}
			results[i], _ = json.Marshal(rec)
		}(i)
	}
	wg.Wait()

	for i, b := range results {
		assert.Equal(t, string(firstJSON), string(b), "goroutine %d", i)
	}
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()

	rec, err := Parse(issTLE)
	require.NoError(t, err)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	s := string(b)

	assert.True(t, strings.HasPrefix(s, `{"name":"ISS (ZARYA)","catalog_number":25544,`), s)
	assert.Contains(t, s, `"epoch":"2015-11-06T21:47:32.864928Z"`)
	assert.Contains(t, s, `"intl_designator":"1998-067A"`)
	assert.Contains(t, s, `"eccentricity":0.0006748`)
	assert.Contains(t, s, `"mean_motion":15.54854844`)
	assert.Contains(t, s, `"b_star":0.00013975`)

	ts, err := rec.EpochTime()
	require.NoError(t, err)
	assert.Equal(t, 864928000, ts.Nanosecond())
}

func TestSplitSetsAndParseAll(t *testing.T) {
	t.Parallel()

	galaxy := "1 26038U 99071A   15310.22169616 -.00000295  00000-0  00000+0 0  9994\n" +
		"2 26038   0.0267 277.2252 0000968   4.9311 147.2041  1.00274057 58248"
	navstar := "NAVSTAR 34 (USA 94)\n" +
		"1 22779U 93054A   15311.29545418 -.00000077  00000-0  00000+0 0  9991\n" +
		"2 22779  55.4766 358.0207 0101203 103.0330   3.0187  2.00460895162545"

	bulk := issTLE + "\n" + galaxy + "\ngarbage\n" + navstar + "\n"

	sets := SplitSets(bulk)
	require.Len(t, sets, 4)
	assert.Equal(t, issTLE, sets[0])
	assert.Equal(t, galaxy, sets[1])
	assert.Equal(t, "garbage", sets[2])
	assert.Equal(t, navstar, sets[3])

	records, errs := Parser{}.ParseAll(bulk)
	require.Len(t, records, 3)
	assert.Equal(t, 25544, records[0].CatalogNumber)
	assert.Equal(t, 26038, records[1].CatalogNumber)
	assert.False(t, records[1].HasName())
	assert.Equal(t, "NAVSTAR 34 (USA 94)", records[2].DisplayName())

	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Index)
	assert.ErrorIs(t, errs[0], ErrStructure)
}

func TestSplitSetsTrailingName(t *testing.T) {
	t.Parallel()

	sets := SplitSets(issLine1 + "\n" + issLine2 + "\nDANGLING")
	require.Len(t, sets, 2)
	assert.Equal(t, "DANGLING", sets[1])
	assert.Empty(t, SplitSets("\r\n\r\n"))
}
