package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tag is an indexed key/value attached to a point.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Field is a named measured value. A nil Value is omitted from the point.
type Field struct {
	Name  string
	Value *float64
}

// Observation is anything that can be turned into a point: a decoded 10-minute
// record or one month of a multi-annual record.
type Observation interface {
	StationID() StationID
	Instant() time.Time
	Tags() []Tag
	Fields() []Field
}

// Point is the canonical time-series unit handed to a sink.
type Point struct {
	Measurement string             `json:"measurement"`
	Tags        []Tag              `json:"tags"`
	Time        time.Time          `json:"time"`
	Fields      map[string]float64 `json:"fields"`
}

// Key identifies the series and instant of the point. Two points with the same
// key overwrite each other at the sink.
func (p Point) Key() string {
	tags := make([]Tag, len(p.Tags))
	copy(tags, p.Tags)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })

	var b strings.Builder
	b.WriteString(p.Measurement)
	for _, t := range tags {
		b.WriteByte(',')
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	b.WriteByte(' ')
	if !p.Time.IsZero() {
		b.WriteString(strconv.FormatInt(p.Time.Unix(), 10))
	}
	return b.String()
}

// TagMap returns the tags as a map.
func (p Point) TagMap() map[string]string {
	m := make(map[string]string, len(p.Tags))
	for _, t := range p.Tags {
		m[t.Key] = t.Value
	}
	return m
}

// reserved names never appear as extra tags or fields.
var reserved = map[string]bool{"station_id": true, "station_name": true, "time": true}

// BuildPoints converts observations into points for measurement. Each point is
// tagged with station_id, station_name when the roster has a non-empty name, and
// any observation-specific tags. Missing values are dropped; an observation with
// no values left produces no point.
func BuildPoints[O Observation](obs []O, measurement string, roster Roster) []Point {
	names := roster.Names()
	points := make([]Point, 0, len(obs))
	for _, o := range obs {
		fields := make(map[string]float64)
		for _, f := range o.Fields() {
			if f.Value == nil || reserved[f.Name] {
				continue
			}
			fields[f.Name] = *f.Value
		}
		if len(fields) == 0 {
			continue
		}

		id := o.StationID()
		tags := []Tag{{Key: "station_id", Value: id.String()}}
		if name := names[id]; name != "" {
			tags = append(tags, Tag{Key: "station_name", Value: name})
		}
		for _, t := range o.Tags() {
			if !reserved[t.Key] {
				tags = append(tags, t)
			}
		}

		points = append(points, Point{
			Measurement: measurement,
			Tags:        tags,
			Time:        o.Instant(),
			Fields:      fields,
		})
	}
	return points
}
