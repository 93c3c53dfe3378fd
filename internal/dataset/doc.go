// Package dataset defines the typed rows of the market dataset (price bars,
// daily returns, news headlines, merged rows) and the CSV boundary around
// them: schema validation, tolerant reads, and header-stable writes.
//
// All validation happens at the load boundary. A file that exists but has no
// data rows loads as an empty, correctly-typed slice; a missing file is a
// NOT_FOUND error; a malformed file is a PARSING error. Writes always emit
// the full column header, even for zero rows, so downstream readers never
// see a missing or shapeless file.
package dataset
