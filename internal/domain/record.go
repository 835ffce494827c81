package domain

import "time"

// MultiAnnualRecord is one station row of a multi-annual means file.
type MultiAnnualRecord struct {
	Station   StationID
	Period    string // e.g. "1961-1990"
	StartYear int
	Months    [12]*float64
	Annual    *float64
}

// PrecipitationRecord is one 10-minute precipitation observation.
type PrecipitationRecord struct {
	Station StationID
	Time    time.Time
	Precip  *float64 // RWS_10, mm
}

// TemperatureRecord is one 10-minute air temperature and humidity observation.
type TemperatureRecord struct {
	Station     StationID
	Time        time.Time
	Temperature *float64 // TT_10, °C at 2 m
	Humidity    *float64 // RF_10, % relative humidity
}

func (r PrecipitationRecord) StationID() StationID { return r.Station }
func (r PrecipitationRecord) Instant() time.Time   { return r.Time }
func (r PrecipitationRecord) Tags() []Tag          { return nil }
func (r PrecipitationRecord) Fields() []Field {
	return []Field{{Name: "precip_10min", Value: r.Precip}}
}

func (r TemperatureRecord) StationID() StationID { return r.Station }
func (r TemperatureRecord) Instant() time.Time   { return r.Time }
func (r TemperatureRecord) Tags() []Tag          { return nil }
func (r TemperatureRecord) Fields() []Field {
	return []Field{
		{Name: "temperature_10min", Value: r.Temperature},
		{Name: "humidity_10min", Value: r.Humidity},
	}
}
