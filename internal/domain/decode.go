package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Layout describes one semicolon-delimited DWD file format: the header literal
// that marks the column header line, the minimum column count, and how a row of
// trimmed columns becomes a record.
type Layout[R any] struct {
	Name       string
	Header     string
	MinColumns int
	Parse      func(cols []string) (R, error)
}

// LineError describes a malformed line that was skipped during decoding.
type LineError struct {
	Line int    // 1-based
	Text string // raw line content
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Decoded is the folded result of decoding one file.
type Decoded[R any] struct {
	Records   []R
	Skipped   []LineError
	Discarded int // rows with every measured value missing
}

// Decode parses text line by line using layout. Blank lines and the header
// line are ignored. A malformed line is recorded in Skipped and never affects
// the other lines.
func Decode[R any](text string, layout Layout[R]) Decoded[R] {
	var out Decoded[R]
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cols := splitColumns(line)
		if cols[0] == layout.Header {
			continue
		}
		if len(cols) < layout.MinColumns {
			out.Skipped = append(out.Skipped, LineError{Line: i + 1, Text: line,
				Err: fmt.Errorf("%w: got %d, want at least %d", ErrShortRow, len(cols), layout.MinColumns)})
			continue
		}
		rec, err := layout.Parse(cols)
		switch {
		case errors.Is(err, ErrEmptyRecord):
			out.Discarded++
		case err != nil:
			out.Skipped = append(out.Skipped, LineError{Line: i + 1, Text: line, Err: err})
		default:
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

func splitColumns(line string) []string {
	cols := strings.Split(line, ";")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

// MultiAnnualLayout decodes multi-annual means files:
//
//	Stations_id;Bezugszeitraum;Datenquelle;Jan.;...;Dez.;Jahr;
//
// The annual column is optional; absent or blank yields a nil Annual.
var MultiAnnualLayout = Layout[MultiAnnualRecord]{
	Name:       "multi_annual",
	Header:     "Stations_id",
	MinColumns: 15,
	Parse:      parseMultiAnnual,
}

// PrecipitationLayout decodes 10-minute precipitation files:
//
//	STATIONS_ID;MESS_DATUM;QN;RWS_DAU_10;RWS_10;RWS_IND_10;eor
var PrecipitationLayout = Layout[PrecipitationRecord]{
	Name:       "precipitation_10min",
	Header:     "STATIONS_ID",
	MinColumns: 5,
	Parse:      parsePrecipitation,
}

// TemperatureLayout decodes 10-minute air temperature files:
//
//	STATIONS_ID;MESS_DATUM;QN;PP_10;TT_10;TM5_10;RF_10;TD_10;eor
var TemperatureLayout = Layout[TemperatureRecord]{
	Name:       "temperature_10min",
	Header:     "STATIONS_ID",
	MinColumns: 7,
	Parse:      parseTemperature,
}

func parseMultiAnnual(cols []string) (MultiAnnualRecord, error) {
	rec := MultiAnnualRecord{
		Station: NormalizeStationID(cols[0]),
		Period:  cols[1],
	}
	year, err := StartYear(rec.Period)
	if err != nil {
		return MultiAnnualRecord{}, err
	}
	rec.StartYear = year

	for m := 0; m < 12; m++ {
		v, err := ParseNumeric(cols[3+m])
		if err != nil {
			return MultiAnnualRecord{}, fmt.Errorf("month %d: %w", m+1, err)
		}
		rec.Months[m] = v
	}

	if len(cols) > 15 && cols[15] != "" {
		v, err := ParseNumeric(cols[15])
		if err != nil {
			return MultiAnnualRecord{}, fmt.Errorf("annual: %w", err)
		}
		rec.Annual = v
	}
	return rec, nil
}

func parsePrecipitation(cols []string) (PrecipitationRecord, error) {
	ts, err := ParseStamp(cols[1])
	if err != nil {
		return PrecipitationRecord{}, err
	}
	v, err := ParseNumeric(cols[4])
	if err != nil {
		return PrecipitationRecord{}, fmt.Errorf("RWS_10: %w", err)
	}
	if v == nil {
		return PrecipitationRecord{}, ErrEmptyRecord
	}
	return PrecipitationRecord{Station: NormalizeStationID(cols[0]), Time: ts, Precip: v}, nil
}

func parseTemperature(cols []string) (TemperatureRecord, error) {
	ts, err := ParseStamp(cols[1])
	if err != nil {
		return TemperatureRecord{}, err
	}
	tt, err := ParseNumeric(cols[4])
	if err != nil {
		return TemperatureRecord{}, fmt.Errorf("TT_10: %w", err)
	}
	rf, err := ParseNumeric(cols[6])
	if err != nil {
		return TemperatureRecord{}, fmt.Errorf("RF_10: %w", err)
	}
	if tt == nil && rf == nil {
		return TemperatureRecord{}, ErrEmptyRecord
	}
	return TemperatureRecord{Station: NormalizeStationID(cols[0]), Time: ts, Temperature: tt, Humidity: rf}, nil
}
