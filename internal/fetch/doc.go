// Package fetch holds the market-data API client used by the fetch commands:
// credential loading (.env supported), a configurable retry policy, and a
// rate-limited HTTP client for the Alpaca data API.
//
// The core pipeline never depends on this package. When credentials are not
// configured the fetch commands still emit schema-stable header-only CSVs so
// downstream readers never see a missing input file.
package fetch
