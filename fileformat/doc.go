// Package fileformat saves and loads whole files in a few formats:
// JSON, YAML, plain text and pipe-delimited csv (via csvstore).
// TOON is supported as an export-only format.
//
// All writes are atomic.
package fileformat
