package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStamp(t *testing.T) {
	ts, err := ParseStamp("202312312350")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 50, 0, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestParseStamp_Invalid(t *testing.T) {
	for _, s := range []string{"", "2023123123", "2023123123500", "20231231235a", "202313012350", "202302301200"} {
		_, err := ParseStamp(s)
		assert.ErrorIs(t, err, ErrInvalidStamp, s)
	}
}

func TestStartYear(t *testing.T) {
	tests := []struct {
		period  string
		want    int
		wantErr bool
	}{
		{"1961-1990", 1961, false},
		{"1991-2020", 1991, false},
		{"1981", 1981, false},
		{"-1990", 0, true},
		{"abc-1990", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := StartYear(tt.period)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyMeans(t *testing.T) {
	rec := MultiAnnualRecord{Station: "00091", Period: "1961-1990", StartYear: 1961}
	rec.Months[0] = ptr(42.5)
	rec.Months[11] = ptr(-1.2)

	months := MonthlyMeans(rec)

	require.Len(t, months, 12)
	assert.Equal(t, time.Date(1961, time.January, 1, 0, 0, 0, 0, time.UTC), months[0].Time)
	assert.InDelta(t, 42.5, *months[0].Value, 1e-9)
	assert.Equal(t, time.Date(1961, time.December, 1, 0, 0, 0, 0, time.UTC), months[11].Time)
	assert.Nil(t, months[5].Value)
	for _, m := range months {
		assert.Equal(t, "1961-1990", m.Period)
		assert.Equal(t, StationID("00091"), m.Station)
	}
}
