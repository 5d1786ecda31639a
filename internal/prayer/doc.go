// Package prayer defines the data model shared by every salat component.
//
// # Types
//
//   - Name: the closed set Fajr, Dhuhr, Asr, Maghrib, Isha. The order is the
//     display order and each position (1-based) is the prayer's stable id.
//   - Entry: one prayer on one day with its "HH:MM" time and checked flag.
//   - DayView: the five entries of a day, always in display order.
//   - Coordinate: latitude/longitude in degrees. Absent is a nil pointer.
//   - Date: a civil calendar day. Navigation uses calendar arithmetic so a
//     daylight-saving transition never skips or repeats a day.
//
// # JSON
//
// Entries serialize as {"id","name","time","checked","date"} with the date in
// ISO YYYY-MM-DD form. The cache stores entries with checked=false; the
// checked flag is applied when a view is published.
package prayer
