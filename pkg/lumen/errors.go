package lumen

import (
	"fmt"
	"strings"
)

// The three disjoint error categories (spec §7): lexical/syntax errors,
// type errors, and runtime errors. Each carries an optional source span so
// the caller can render highlighted context, in the manner of the teacher's
// SourceError/FormatWithHighlighting.

// SyntaxError covers both lexical errors (wrapped LexError) and parse
// errors.
type SyntaxError struct {
	Msg  string
	Span Span
}

func (e *SyntaxError) Error() string { return e.Msg }

// TypeError is raised by the inferencer for an unbound identifier, a missing
// or inaccessible field, an arity mismatch, and an unknown operator or
// pattern. Unification and occurs-check failures are reported as
// hm.UnificationError and hm.OccursCheckError instead.
type TypeError struct {
	Msg  string
	Span Span
}

func (e *TypeError) Error() string { return e.Msg }

// RuntimeError is raised by the evaluator. Per spec §9, successful inference
// is meant to make these unreachable in practice except for the explicitly
// documented residual cases (e.g. division by zero, indexing out of
// bounds) that the type system does not track.
type RuntimeError struct {
	Msg  string
	Span Span
}

func (e *RuntimeError) Error() string { return e.Msg }

// FormatWithHighlighting renders an error against its originating source,
// underlining the offending span, in the style of the teacher's
// SourceError.FormatWithHighlighting.
func FormatWithHighlighting(source, filename, msg string, span Span) string {
	lines := strings.Split(source, "\n")
	var b strings.Builder
	if filename != "" {
		fmt.Fprintf(&b, "%s:%d:%d: %s\n", filename, span.Start.Line, span.Start.Column, msg)
	} else {
		fmt.Fprintf(&b, "%d:%d: %s\n", span.Start.Line, span.Start.Column, msg)
	}
	lineIdx := span.Start.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return b.String()
	}
	line := lines[lineIdx]
	fmt.Fprintf(&b, "    %s\n", line)

	underlineLen := 1
	if span.Start.Line == span.End.Line && span.End.Column > span.Start.Column {
		underlineLen = span.End.Column - span.Start.Column
	}
	pad := strings.Repeat(" ", span.Start.Column-1)
	underline := strings.Repeat("^", underlineLen)
	fmt.Fprintf(&b, "    %s%s\n", pad, underline)
	return b.String()
}
