// Package domain models Korea Meteorological Administration (KMA) surface
// observation data.
//
// # Data Source
//
// Observations come from the KMA API hub (https://apihub.kma.go.kr). Two
// endpoints are used:
//
//	typ02 getSfcStnLstTbl  XML station directory (stn_id, stn_ko, lat, lon)
//	typ01 kma_sfctm3.php   plain-text hourly readings for a time window
//
// # Station Directory Envelope
//
// The XML response carries header>resultCode and header>resultMsg. Only
// resultCode "00" means success; anything else (for example "01" with an
// "invalid key" message) is an upstream failure and the item list must not be
// trusted.
//
// # Hourly Text Format
//
// Lines starting with "#" are metadata (column legends, "#7777END"). Every
// other non-blank line is one reading with whitespace separated fields in the
// fixed order listed in [Columns]:
//
//	202401010000 90 16 1.2 ... -9 -9.0 ...
//
// TM is local time (KST, UTC+9) in YYYYMMDDHHmm form. STN is the numeric
// station id. WW (present weather) and CT (cloud type) are categorical codes;
// every other column is numeric.
//
// Missing values:
//
//	KMA writes -9 or -99 (also as -9.0 / -99.0) for "no data". These are not
//	measurements and are replaced by null before anything aggregates over
//	them, see [NormalizeMissing]. Unparseable tokens also become null.
//
// # Windows
//
// Collection requests one calendar month at a time. The window runs from the
// first day at 00:00 to the last day at 23:00 (hourly readings), see
// [MonthWindow].
//
// # Merge
//
// Observations are left-joined to stations by id. Rows without a station,
// coordinates, or a parseable TM are dropped and the remainder is ordered by
// time, see [Merge]. Readings duplicated across overlapping windows are kept.
package domain
