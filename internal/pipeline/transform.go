package pipeline

import (
	"fmt"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Result is the outcome of decoding one text file into points.
type Result struct {
	Format    string
	Points    []domain.Point
	Skipped   []domain.LineError
	Discarded int
}

type decodeFunc func(text string, ds domain.Dataset, roster domain.Roster) Result

// tenMinuteDecoders selects the 10-minute layout per data type.
var tenMinuteDecoders = map[domain.DataType]decodeFunc{
	domain.Precipitation: func(text string, ds domain.Dataset, roster domain.Roster) Result {
		return decodeWith(text, domain.PrecipitationLayout, ds.Measurement, roster)
	},
	domain.Temperature: func(text string, ds domain.Dataset, roster domain.Roster) Result {
		return decodeWith(text, domain.TemperatureLayout, ds.Measurement, roster)
	},
}

// Transform decodes the text of a file belonging to ref and builds points.
// Multi-annual rows for stations outside a non-empty roster are dropped.
func Transform(ref domain.ArchiveRef, text string, roster domain.Roster) (Result, error) {
	ds, ok := domain.DatasetFor(ref.DataType)
	if !ok {
		return Result{}, fmt.Errorf("unknown data type %q", ref.DataType)
	}
	if ref.Scope == domain.ScopeMultiAnnual {
		return decodeMultiAnnual(text, ds, roster), nil
	}
	fn, ok := tenMinuteDecoders[ref.DataType]
	if !ok {
		return Result{}, fmt.Errorf("no 10-minute decoder for %q", ref.DataType)
	}
	return fn(text, ds, roster), nil
}

func decodeWith[R domain.Observation](text string, layout domain.Layout[R], measurement string, roster domain.Roster) Result {
	d := domain.Decode(text, layout)
	return Result{
		Format:    layout.Name,
		Points:    domain.BuildPoints(d.Records, measurement, roster),
		Skipped:   d.Skipped,
		Discarded: d.Discarded,
	}
}

func decodeMultiAnnual(text string, ds domain.Dataset, roster domain.Roster) Result {
	d := domain.Decode(text, domain.MultiAnnualLayout)
	var means []domain.MonthlyMean
	for _, rec := range d.Records {
		if len(roster) > 0 && !roster.Contains(rec.Station) {
			continue
		}
		means = append(means, domain.MonthlyMeans(rec)...)
	}
	return Result{
		Format:    domain.MultiAnnualLayout.Name,
		Points:    domain.BuildPoints(means, ds.MultiAnnualMeasurement, roster),
		Skipped:   d.Skipped,
		Discarded: d.Discarded,
	}
}
