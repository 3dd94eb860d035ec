// # LaxCSV: A Forgiving Streaming CSV Reader for Go
//
// LaxCSV is a line-oriented CSV reading library for dirty, real-world data. Its parser is total: any line of text parses into at least one field, with unterminated quotes, bare quotes, and trailing separators all tolerated rather than rejected. On top of the parser sits a stateful record reader that tracks a one-time header row, maps header names onto struct fields, and coerces field text into typed values on a best-effort basis.
//
// # Features
//
// - Total single-line parser (`ParseLine`) with configurable separator and quote bytes and doubled-quote escaping.
// - Stateful `Reader` with header capture, line counting, skip support, and end-of-input detection over any `LineSource`.
// - Typed record population via reflection (`ReadInto`, `ReadObject`) with per-type field discovery cached process-wide.
// - Best-effort coercion: one malformed cell never aborts a record; only structural misuse surfaces as an error.
// - Construction from paths, plain readers, explicitly-encoded readers (golang.org/x/text), or custom line sources such as a live tail.
//
// # Getting Started
//
// The module path is `github.com/laxcsv/laxcsv`. Open a file, read the header once, then pull records until ErrEndOfInput.
package laxcsv
