// Package delta computes and applies line-oriented deltas between two
// text contents. A delta is a sequence of typed hunks produced directly
// from LCS opcodes; reconstruction is driven by explicit offsets and
// counts, never by matching context lines against the old content.
package delta

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/ekm507/chroni/internal/errors"
)

// Hunk replaces OldCount lines of the old content, starting at line
// OldStart (0-based), with Lines. An insertion has OldCount == 0, a pure
// deletion has no Lines.
type Hunk struct {
	OldStart int      `json:"s"`
	OldCount int      `json:"c"`
	Lines    []string `json:"l,omitempty"`
}

// Delta is an ordered edit script. Hunks are sorted by OldStart and do
// not overlap; old lines not covered by any hunk pass through unchanged.
type Delta struct {
	Hunks []Hunk
}

// Compute produces the delta transforming old into new.
// Deterministic: identical inputs yield an identical hunk sequence.
func Compute(old, new string) Delta {
	oldLines := SplitLines(old)
	newLines := SplitLines(new)

	m := difflib.NewMatcher(oldLines, newLines)

	var hunks []Hunk
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		// 'r', 'd' and 'i' all reduce to the same shape: replace the
		// old range with the new range (either side may be empty).
		h := Hunk{
			OldStart: op.I1,
			OldCount: op.I2 - op.I1,
		}
		if op.J2 > op.J1 {
			h.Lines = append(h.Lines, newLines[op.J1:op.J2]...)
		}
		hunks = append(hunks, h)
	}

	return Delta{Hunks: hunks}
}

// Apply reconstructs the new content from old and d.
// Fails with MALFORMED_DELTA when a hunk reaches beyond the old line
// stream or hunks are out of order. Old lines before, between, and after
// hunks are copied through verbatim.
func Apply(old string, d Delta) (string, error) {
	oldLines := SplitLines(old)

	var b strings.Builder
	pos := 0
	for _, h := range d.Hunks {
		if h.OldStart < 0 || h.OldCount < 0 {
			return "", errors.NewMalformedDelta("hunk with negative offset or count")
		}
		if h.OldStart < pos {
			return "", errors.NewMalformedDelta("hunks out of order or overlapping")
		}
		if h.OldStart > len(oldLines) || h.OldStart+h.OldCount > len(oldLines) {
			return "", errors.NewMalformedDelta("hunk reaches beyond old content")
		}
		for _, line := range oldLines[pos:h.OldStart] {
			b.WriteString(line)
		}
		for _, line := range h.Lines {
			b.WriteString(line)
		}
		pos = h.OldStart + h.OldCount
	}
	// Uncovered trailing region is implicitly unchanged.
	for _, line := range oldLines[pos:] {
		b.WriteString(line)
	}

	return b.String(), nil
}

// Unified renders a classic unified diff of old vs new for display.
// The output is never parsed back; reconstruction uses typed hunks only.
func Unified(old, new string) string {
	u := difflib.UnifiedDiff{
		A:        SplitLines(old),
		B:        SplitLines(new),
		FromFile: "previous",
		ToFile:   "current",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// SplitLines splits into lines keeping newline characters, so that
// joining the elements reproduces the input exactly. A file that does
// not end with a newline yields a final element without one.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
