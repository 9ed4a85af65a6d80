package index

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/depviz/pkg/errors"
)

// Skip records an index line that was ignored because it could not be
// interpreted. Err always carries the FORMAT_ERROR code.
type Skip struct {
	Line int
	Text string
	Err  error
}

func (s Skip) String() string { return errs.UserMessage(s.Err) }

// Result is the outcome of parsing one index.
type Result struct {
	Format  Format
	Mapping *Mapping
	Skipped []Skip
}

// State is the accumulator threaded through [Step].
//
// The zero value is not usable; start from [NewState]. A State owns its
// Mapping and Skipped storage; [Step] updates them in place, so keep a
// [State.Clone] when an earlier state must stay readable.
type State struct {
	Mapping *Mapping
	Skipped []Skip
	current string // package context of the structured format; "" if none
}

// NewState returns an empty accumulator.
func NewState() State {
	return State{Mapping: NewMapping()}
}

// Current returns the active package context, if any.
func (s State) Current() (string, bool) { return s.current, s.current != "" }

// Clone returns a deep copy of s that later steps on s do not affect.
func (s State) Clone() State {
	return State{
		Mapping: s.Mapping.clone(),
		Skipped: slices.Clone(s.Skipped),
		current: s.current,
	}
}

// Step reduces one classified line into the state.
//
// Step consumes s: the returned state shares the Mapping and Skipped storage
// of s, so s must not be read or stepped again afterwards.
func Step(s State, l Line) State {
	switch l.Kind {
	case LinePackage:
		s.current = l.Name
		s.Mapping.declare(l.Name)
	case LineDepends:
		if s.current == "" {
			return s.skip(l, "dependency line without a preceding package line")
		}
		s.Mapping.append(s.current, l.Deps)
	case LineRecord:
		s.Mapping.replace(l.Name, l.Deps)
	case LineMalformed:
		if strings.HasPrefix(l.Raw, packagePrefix) {
			// The context of the previous record must not leak into the
			// dependencies of an unnamed one.
			s.current = ""
		}
		return s.skip(l, l.Reason)
	}
	return s
}

func (s State) skip(l Line, reason string) State {
	s.Skipped = append(s.Skipped, Skip{
		Line: l.Num,
		Text: l.Raw,
		Err:  errs.New(errs.ErrCodeFormat, "line %d: %s", l.Num, reason),
	})
	return s
}

// Parse folds every line of text into a dependency mapping.
//
// Only an unknown format is an error; malformed lines end up in
// [Result.Skipped] and parsing continues.
func Parse(text string, format Format) (*Result, error) {
	if format != FormatStructured && format != FormatSimple {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown index format %q", format)
	}
	s := NewState()
	for i, raw := range strings.Split(text, "\n") {
		s = Step(s, Classify(strings.TrimRight(raw, "\r"), i+1, format))
	}
	return &Result{Format: format, Mapping: s.Mapping, Skipped: s.Skipped}, nil
}
