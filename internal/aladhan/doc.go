// Package aladhan is the HTTP client for the Aladhan prayer time service.
//
// The client issues GET /v1/timings/{DD-MM-YYYY} with the coordinate,
// calculation method, time zone and optional school as query parameters and
// returns the five canonical timings. Non-2xx statuses, transport errors and
// payloads without a timings object are returned as errors.
package aladhan
