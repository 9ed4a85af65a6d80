// Package index parses package index text into a dependency mapping.
//
// Two line-oriented formats are understood:
//
//   - [FormatStructured]: Alpine APKINDEX records. A "P:" line starts a new
//     package context and every following "D:" line appends dependency tokens
//     to it. Tokens qualified with "so:" (shared objects) or "cmd:" (command
//     aliases) are not package names and are dropped.
//   - [FormatSimple]: one "pkg: dep1 dep2" record per line, used for local
//     test repositories.
//
// Parsing is a fold: every raw line is first classified into a [Line] with a
// [LineKind], then [Step] reduces it into the accumulated [State]. Anomalies
// such as a "D:" line with no package context are never fatal. They are
// recorded as [Skip] entries carrying a FORMAT_ERROR and the line is ignored.
//
// Repeated packages behave differently per format. Structured records
// accumulate dependencies across repeats, while a later simple record
// replaces the earlier one.
//
// # Usage
//
//	res, err := index.Parse(text, index.FormatStructured)
//	if err != nil {
//	    return err
//	}
//	deps, ok := res.Mapping.Deps("busybox")
package index
