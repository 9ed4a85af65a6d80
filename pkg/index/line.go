package index

import (
	"strings"

	errs "github.com/matzehuels/depviz/pkg/errors"
)

// Format identifies the textual layout of a package index.
type Format string

const (
	// FormatStructured is the APKINDEX record format ("P:" / "D:" lines).
	FormatStructured Format = "structured"
	// FormatSimple is the one-record-per-line test format ("pkg: a b").
	FormatSimple Format = "simple"
)

// ParseFormat resolves a format tag. The aliases "apk" and "test" are
// accepted for the structured and simple formats respectively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "apk", "apkindex":
		return FormatStructured, nil
	case "simple", "test":
		return FormatSimple, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown index format %q (must be one of: structured, simple)", s)
}

// LineKind tags a classified index line.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line.
	LineBlank LineKind = iota
	// LinePackage opens a package context (structured "P:").
	LinePackage
	// LineDepends lists dependencies of the current package (structured "D:").
	LineDepends
	// LineRecord is a complete simple-format record.
	LineRecord
	// LineOther is a well-formed line that carries nothing of interest,
	// such as the version or architecture fields of an APKINDEX record.
	LineOther
	// LineMalformed cannot be interpreted and is skipped.
	LineMalformed
)

var lineKindNames = map[LineKind]string{
	LineBlank:     "blank",
	LinePackage:   "package",
	LineDepends:   "depends",
	LineRecord:    "record",
	LineOther:     "other",
	LineMalformed: "malformed",
}

func (k LineKind) String() string {
	if s, ok := lineKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Line is a single classified index line.
type Line struct {
	Kind   LineKind
	Num    int      // 1-based line number
	Raw    string   // original text without the trailing newline
	Name   string   // package name (LinePackage, LineRecord)
	Deps   []string // dependency names (LineDepends, LineRecord)
	Reason string   // why a line is LineMalformed
}

const (
	packagePrefix = "P:"
	dependsPrefix = "D:"
	recordSep     = ":"
)

// qualifiers mark tokens that name provided capabilities rather than packages.
var qualifiers = []string{"so:", "cmd:"}

// Classify turns a raw line into a [Line] according to format.
func Classify(raw string, num int, format Format) Line {
	l := Line{Num: num, Raw: raw}
	if strings.TrimSpace(raw) == "" {
		l.Kind = LineBlank
		return l
	}
	if format == FormatSimple {
		return classifySimple(l)
	}
	return classifyStructured(l)
}

func classifyStructured(l Line) Line {
	switch {
	case strings.HasPrefix(l.Raw, packagePrefix):
		l.Name = strings.TrimSpace(l.Raw[len(packagePrefix):])
		if l.Name == "" {
			l.Kind = LineMalformed
			l.Reason = "empty package name"
			return l
		}
		l.Kind = LinePackage
	case strings.HasPrefix(l.Raw, dependsPrefix):
		l.Kind = LineDepends
		l.Deps = dependencyTokens(l.Raw[len(dependsPrefix):])
	default:
		l.Kind = LineOther
	}
	return l
}

func classifySimple(l Line) Line {
	name, rest, ok := strings.Cut(l.Raw, recordSep)
	if !ok {
		l.Kind = LineMalformed
		l.Reason = "missing ':' separator"
		return l
	}
	l.Name = strings.TrimSpace(name)
	if l.Name == "" {
		l.Kind = LineMalformed
		l.Reason = "empty package name"
		return l
	}
	l.Kind = LineRecord
	l.Deps = strings.Fields(rest)
	return l
}

// dependencyTokens splits a "D:" payload and keeps only resolvable names.
// Version constraints are cut ("musl>=1.2" becomes "musl") and conflict
// markers ("!foo") are dropped along with qualified tokens.
func dependencyTokens(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if isQualified(tok) || strings.HasPrefix(tok, "!") {
			continue
		}
		if i := strings.IndexAny(tok, "<>=~"); i >= 0 {
			tok = tok[:i]
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func isQualified(tok string) bool {
	for _, q := range qualifiers {
		if strings.HasPrefix(tok, q) {
			return true
		}
	}
	return false
}
