// Command inspect decodes a local DWD file with the production decoders and
// reports what a run would write. Zip files are treated as 10-minute archives,
// anything else as a multi-annual means file. It never contacts the network or
// a sink, which makes it useful for checking new DWD files and for generating
// test fixtures.
//
// Usage:
//
//	go run ./cmd/inspect \
//	  -file testdata/10minutenwerte_TU_00091_now.zip \
//	  -type temperature \
//	  -stations 00091 \
//	  -out points.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
	"github.com/couchcryptid/dwd-climate-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "", "local .txt or .zip file to decode")
	dataType := flag.String("type", "precipitation", "data type: precipitation or temperature")
	stations := flag.String("stations", "", "comma-separated station ids to keep (multi-annual files); empty keeps all")
	out := flag.String("out", "", "optional output path for the built points as JSON")
	showSkipped := flag.Int("show-skipped", 10, "number of skipped lines to print")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -file")
	}
	if _, ok := domain.DatasetFor(domain.DataType(*dataType)); !ok {
		return fmt.Errorf("unknown -type %q", *dataType)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	ref := domain.ArchiveRef{
		Name:     filepath.Base(*file),
		DataType: domain.DataType(*dataType),
		Scope:    domain.ScopeMultiAnnual,
	}
	if strings.EqualFold(filepath.Ext(*file), ".zip") {
		ref.Scope = domain.ScopeHistorical
	}

	members, err := pipeline.Unpack(ref, data)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", ref.Name, err)
	}

	roster := parseRoster(*stations)
	var points []domain.Point
	for _, m := range members {
		res, err := pipeline.Transform(ref, m.Text, roster)
		if err != nil {
			return fmt.Errorf("decode %s: %w", m.Name, err)
		}
		log.Printf("%s: format=%s points=%d skipped=%d discarded=%d",
			m.Name, res.Format, len(res.Points), len(res.Skipped), res.Discarded)
		for i, le := range res.Skipped {
			if i >= *showSkipped {
				log.Printf("  ... %d more skipped lines", len(res.Skipped)-i)
				break
			}
			log.Printf("  line %d: %v: %q", le.Line, le.Err, le.Text)
		}
		points = append(points, res.Points...)
	}

	printStats(points)

	if *out != "" {
		if err := writeJSON(*out, points); err != nil {
			return fmt.Errorf("writing points: %w", err)
		}
		log.Printf("wrote %d points: %s", len(points), *out)
	}
	return nil
}

func parseRoster(s string) domain.Roster {
	var roster domain.Roster
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			roster = append(roster, domain.Station{ID: domain.NormalizeStationID(id)})
		}
	}
	return roster
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats logs point counts per measurement and station plus the time span.
func printStats(points []domain.Point) {
	if len(points) == 0 {
		log.Printf("no points")
		return
	}

	counts := make(map[string]int)
	first, last := points[0].Time, points[0].Time
	for _, p := range points {
		counts[p.Measurement+" "+p.TagMap()["station_id"]]++
		if p.Time.Before(first) {
			first = p.Time
		}
		if p.Time.After(last) {
			last = p.Time
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Printf("%s: %d", k, counts[k])
	}
	log.Printf("total: %d points from %s to %s", len(points), first.Format("2006-01-02 15:04"), last.Format("2006-01-02 15:04"))
}
