package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"31/12/2023", day(2023, time.December, 31)},
		{"2023-12-31", day(2023, time.December, 31)},
		{"31 Dec 2023", day(2023, time.December, 31)},
		{"31 December 2023", day(2023, time.December, 31)},
		{"12/31/2023", day(2023, time.December, 31)},
		{"31-12-2023", day(2023, time.December, 31)},
		{"2023/12/31", day(2023, time.December, 31)},
		{"2023.12.31", day(2023, time.December, 31)},
		{"  1/2/2024 ", day(2024, time.February, 1)},
		{"5 mar 2024", day(2024, time.March, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNormalize_AmbiguousIsDayFirst(t *testing.T) {
	got, err := Normalize("03/04/2024")
	require.NoError(t, err)

	assert.Equal(t, 3, got.Day())
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 2024, got.Year())
}

func TestNormalize_Fallback(t *testing.T) {
	t.Run("timestamp", func(t *testing.T) {
		got, err := Normalize("2024-03-05T10:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.March, 5), got)
	})

	t.Run("two digit year prefers day first", func(t *testing.T) {
		got, err := Normalize("3/4/24")
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.April, 3), got)
	})

	dayFirst := []struct {
		input string
		want  time.Time
	}{
		{"31.12.2023", day(2023, time.December, 31)},
		{"03.04.2024", day(2024, time.April, 3)},
		{"3.4.24", day(2024, time.April, 3)},
		{"03-04-24", day(2024, time.April, 3)},
		{"31/12/23", day(2023, time.December, 31)},
	}
	for _, tt := range dayFirst {
		t.Run("day first "+tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Unrecognized(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "bad"} {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input)
			require.Error(t, err)

			var dateErr *UnrecognizedDateFormatError
			require.True(t, errors.As(err, &dateErr))
		})
	}

	_, err := Normalize("someday")
	assert.EqualError(t, err, `date "someday" is not in a recognized format`)
}

func TestKeys(t *testing.T) {
	d := day(2024, time.January, 5)

	assert.Equal(t, "05-01-2024", FormatKey(d))
	assert.Equal(t, "05/01/2024", Display(d))

	parsed, err := ParseKey("05-01-2024")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	for _, bad := range []string{"2024-01-05", "5-1-2024", "05/01/2024", "32-01-2024", ""} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRange(t *testing.T) {
	t.Run("open range", func(t *testing.T) {
		r, err := ParseRange("", " ")
		require.NoError(t, err)
		assert.True(t, r.IsOpen())
		assert.True(t, r.Contains(day(1999, time.January, 1)))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		r, err := ParseRange("01/01/2024", "2024-01-31")
		require.NoError(t, err)

		assert.True(t, r.Contains(day(2024, time.January, 1)))
		assert.True(t, r.Contains(day(2024, time.January, 31)))
		assert.False(t, r.Contains(day(2023, time.December, 31)))
		assert.False(t, r.Contains(day(2024, time.February, 1)))
	})

	t.Run("only lower bound", func(t *testing.T) {
		r, err := ParseRange("15/01/2024", "")
		require.NoError(t, err)

		assert.False(t, r.Contains(day(2024, time.January, 14)))
		assert.True(t, r.Contains(day(2030, time.January, 1)))
	})

	t.Run("unparsable bound is fatal", func(t *testing.T) {
		_, err := ParseRange("yesterday-ish", "")

		var dateErr *UnrecognizedDateFormatError
		require.True(t, errors.As(err, &dateErr))
		assert.Equal(t, "yesterday-ish", dateErr.Value)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := ParseRange("31/01/2024", "01/01/2024")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
