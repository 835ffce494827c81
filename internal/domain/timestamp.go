package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const stampLayout = "200601021504"

// ParseStamp parses a 10-minute MESS_DATUM value (YYYYMMDDhhmm) as UTC.
func ParseStamp(s string) (time.Time, error) {
	if len(s) != len(stampLayout) || !isDigits(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStamp, s)
	}
	t, err := time.ParseInLocation(stampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStamp, s)
	}
	return t, nil
}

// StartYear returns the first year of a reference period such as "1961-1990".
func StartYear(period string) (int, error) {
	first, _, _ := strings.Cut(period, "-")
	year, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return year, nil
}

// MonthlyMean is a single month of a multi-annual record, stamped at the first
// day of that month in the reference period's start year.
type MonthlyMean struct {
	Station StationID
	Period  string
	Time    time.Time
	Value   *float64
}

func (m MonthlyMean) StationID() StationID { return m.Station }
func (m MonthlyMean) Instant() time.Time   { return m.Time }
func (m MonthlyMean) Tags() []Tag          { return []Tag{{Key: "reference_period", Value: m.Period}} }
func (m MonthlyMean) Fields() []Field      { return []Field{{Name: "value", Value: m.Value}} }

// MonthlyMeans fans a multi-annual record out into twelve monthly observations.
func MonthlyMeans(rec MultiAnnualRecord) []MonthlyMean {
	out := make([]MonthlyMean, 0, len(rec.Months))
	for i, v := range rec.Months {
		out = append(out, MonthlyMean{
			Station: rec.Station,
			Period:  rec.Period,
			Time:    time.Date(rec.StartYear, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Value:   v,
		})
	}
	return out
}
