// Package domain models DWD (Deutscher Wetterdienst) open climate data.
//
// # Data Source
//
// Station observations come from the DWD Climate Data Center open data tree,
// https://opendata.dwd.de/climate_environment/CDC/observations_germany/climate.
// Two products are ingested for precipitation and air temperature:
//
//	multi_annual/mean_{yy-yy}/{Niederschlag|Temperatur}_{yyyy-yyyy}.txt
//	  Plain text, one row per station and reference period.
//	10_minutes/{precipitation|air_temperature}/{historical|recent|now}/
//	  One zip archive per station and scope holding a single produkt_*.txt member.
//
// # DWD Data Conventions
//
// Delimiting:
//
//	Fields are separated by ";" and padded with spaces. The first line of each
//	file is a header: "Stations_id" (multi-annual) or "STATIONS_ID" (10-minute).
//
// Numbers:
//
//	Decimal separator is ",": "42,5" = 42.5.
//	"-999" is the missing-value sentinel and never a measurement.
//
// Timestamps:
//
//	10-minute rows carry "YYYYMMDDhhmm", e.g. "202401011230", interpreted as UTC.
//	Multi-annual rows carry a reference period "1961-1990". Monthly means are
//	stamped at the first day of the month in the period's start year, so the
//	January mean of 1961-1990 lands on 1961-01-01T00:00:00Z.
//
// Station ids:
//
//	Five-digit zero-padded codes ("00091"). Shorter numeric ids are padded on
//	ingestion, see [NormalizeStationID].
//
// File naming:
//
//	10minutenwerte_{nieder|TU}_{id}_akt.zip    recent
//	10minutenwerte_{nieder|TU}_{id}_now.zip    now
//	10minutenwerte_{nieder|TU}_{id}_{from}_{to}_hist.zip
//
// # Idempotency
//
// Points are identified by measurement, tag set and instant (see [Point.Key]).
// Writing the same point twice overwrites it at the sink, so every run mode can
// be repeated safely without read-before-write checks.
package domain
