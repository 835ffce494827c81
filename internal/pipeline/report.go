package pipeline

import (
	"time"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Report summarizes one run.
type Report struct {
	Mode             domain.Mode    `json:"mode"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	Archives         int            `json:"archives"`
	ArchivesFailed   int            `json:"archives_failed"`
	LinesSkipped     int            `json:"lines_skipped"`
	RecordsDiscarded int            `json:"records_discarded"`
	Points           map[string]int `json:"points"` // by measurement
	Error            string         `json:"error,omitempty"`
}

// TotalPoints sums points over all measurements.
func (r Report) TotalPoints() int {
	n := 0
	for _, c := range r.Points {
		n += c
	}
	return n
}

func (r Report) clone() Report {
	pts := make(map[string]int, len(r.Points))
	for k, v := range r.Points {
		pts[k] = v
	}
	r.Points = pts
	return r
}
