package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBaseURL is the root of the DWD German station observation tree.
const DefaultBaseURL = "https://opendata.dwd.de/climate_environment/CDC/observations_germany/climate"

// DataType selects a measured quantity.
type DataType string

const (
	Precipitation DataType = "precipitation"
	Temperature   DataType = "temperature"
)

// Scope identifies which part of the DWD tree an archive comes from.
type Scope string

const (
	ScopeMultiAnnual Scope = "multi_annual"
	ScopeHistorical  Scope = "historical"
	ScopeRecent      Scope = "recent"
	ScopeNow         Scope = "now"
)

// Dataset holds everything that differs between data types: file naming,
// directories, and the measurement names points are written under.
type Dataset struct {
	Type                   DataType
	FileToken              string // "nieder" or "TU" in 10-minute archive names
	Directory              string // 10-minute directory below the base URL
	MultiAnnualFile        string // multi-annual file name stem
	Measurement            string
	MultiAnnualMeasurement string
}

// Datasets lists the supported data types in processing order.
var Datasets = []Dataset{
	{
		Type:                   Precipitation,
		FileToken:              "nieder",
		Directory:              "10_minutes/precipitation",
		MultiAnnualFile:        "Niederschlag",
		Measurement:            "precip_10min",
		MultiAnnualMeasurement: "multi_annual_precipitation",
	},
	{
		Type:                   Temperature,
		FileToken:              "TU",
		Directory:              "10_minutes/air_temperature",
		MultiAnnualFile:        "Temperatur",
		Measurement:            "temp_10min",
		MultiAnnualMeasurement: "multi_annual_temperature",
	},
}

// DatasetFor looks up the dataset for t.
func DatasetFor(t DataType) (Dataset, bool) {
	for _, ds := range Datasets {
		if ds.Type == t {
			return ds, true
		}
	}
	return Dataset{}, false
}

// ReferencePeriods are the published multi-annual averaging windows.
var ReferencePeriods = []string{"1961-1990", "1971-2000", "1981-2010", "1991-2020"}

// ShortPeriod abbreviates "1961-1990" to "61-90" as used in directory names.
func ShortPeriod(period string) string {
	parts := strings.Split(period, "-")
	for i, p := range parts {
		if len(p) > 2 {
			parts[i] = p[len(p)-2:]
		}
	}
	return strings.Join(parts, "-")
}

// Mode is a run mode of the loader.
type Mode string

const (
	ModeBootstrap  Mode = "bootstrap"
	ModeHistorical Mode = "historical"
	ModeTracking   Mode = "tracking"
)

// ParseMode resolves a mode name. "init" is accepted as an alias of bootstrap.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bootstrap", "init":
		return ModeBootstrap, nil
	case "historical":
		return ModeHistorical, nil
	case "tracking":
		return ModeTracking, nil
	}
	return "", fmt.Errorf("unknown mode %q (allowed: bootstrap, historical, tracking)", s)
}

// ArchiveRef locates one remote file to ingest.
type ArchiveRef struct {
	URL      string
	Name     string
	DataType DataType
	Scope    Scope
	Station  StationID // empty for multi-annual files
	Period   string    // reference period, multi-annual only
}

// Zipped reports whether the archive is a zip container rather than plain text.
func (r ArchiveRef) Zipped() bool {
	return r.Scope != ScopeMultiAnnual
}

// HistoricalSuffix ends every historical 10-minute archive name.
const HistoricalSuffix = "_hist.zip"

const (
	archivePrefix = "10minutenwerte_"
	suffixRecent  = "_akt.zip"
	suffixNow     = "_now.zip"
)

// Selector decides which archives each run mode fetches.
type Selector struct {
	baseURL string
}

// NewSelector creates a Selector rooted at baseURL, or DefaultBaseURL if empty.
func NewSelector(baseURL string) Selector {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Selector{baseURL: baseURL}
}

// MultiAnnual returns one plain-text file per reference period.
func (s Selector) MultiAnnual(ds Dataset) []ArchiveRef {
	refs := make([]ArchiveRef, 0, len(ReferencePeriods))
	for _, period := range ReferencePeriods {
		name := fmt.Sprintf("%s_%s.txt", ds.MultiAnnualFile, period)
		refs = append(refs, ArchiveRef{
			URL:      fmt.Sprintf("%s/multi_annual/mean_%s/%s", s.baseURL, ShortPeriod(period), name),
			Name:     name,
			DataType: ds.Type,
			Scope:    ScopeMultiAnnual,
			Period:   period,
		})
	}
	return refs
}

// Bootstrap returns the multi-annual files followed by one recent archive per station.
func (s Selector) Bootstrap(ds Dataset, roster Roster) []ArchiveRef {
	return append(s.MultiAnnual(ds), s.perStation(ds, roster, ScopeRecent, suffixRecent)...)
}

// Tracking returns one "now" archive per station.
func (s Selector) Tracking(ds Dataset, roster Roster) []ArchiveRef {
	return s.perStation(ds, roster, ScopeNow, suffixNow)
}

func (s Selector) perStation(ds Dataset, roster Roster, scope Scope, suffix string) []ArchiveRef {
	dir := s.Dir(ds, scope)
	refs := make([]ArchiveRef, 0, len(roster))
	for _, st := range roster {
		name := ds.stationPrefix(st.ID) + strings.TrimPrefix(suffix, "_")
		refs = append(refs, ArchiveRef{
			URL:      dir + name,
			Name:     name,
			DataType: ds.Type,
			Scope:    scope,
			Station:  st.ID,
		})
	}
	return refs
}

// Dir returns the 10-minute directory URL for scope, with a trailing slash.
func (s Selector) Dir(ds Dataset, scope Scope) string {
	return fmt.Sprintf("%s/%s/%s/", s.baseURL, ds.Directory, scope)
}

// HistoricalPrefix is the file name prefix shared by all historical archives of ds.
func (ds Dataset) HistoricalPrefix() string {
	return archivePrefix + ds.FileToken + "_"
}

func (ds Dataset) stationPrefix(id StationID) string {
	return ds.HistoricalPrefix() + id.String() + "_"
}

// MatchHistorical picks the historical archives for each roster station out of a
// directory listing. A name matches a station when it starts with
// "10minutenwerte_{token}_{id}_" and ends with "_hist.zip". The listing is
// indexed once, so the cost is linear in files plus stations. Stations without a
// match yield no refs.
func (s Selector) MatchHistorical(ds Dataset, roster Roster, listing []string) []ArchiveRef {
	prefix := ds.HistoricalPrefix()
	byStation := make(map[StationID][]string)
	for _, name := range listing {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, HistoricalSuffix) {
			continue
		}
		rest := name[len(prefix):]
		id, _, ok := strings.Cut(rest, "_")
		if !ok {
			continue
		}
		byStation[StationID(id)] = append(byStation[StationID(id)], name)
	}

	dir := s.Dir(ds, ScopeHistorical)
	var refs []ArchiveRef
	for _, st := range roster {
		names := byStation[st.ID]
		sort.Strings(names)
		for _, name := range names {
			refs = append(refs, ArchiveRef{
				URL:      dir + name,
				Name:     name,
				DataType: ds.Type,
				Scope:    ScopeHistorical,
				Station:  st.ID,
			})
		}
	}
	return refs
}
