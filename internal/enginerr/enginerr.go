// Package enginerr holds the fatal "engine error" family of spec.md §7:
// bugs or malformed input, as distinct from verification verdicts
// (Valid/Invalid/Deadlock) and infeasibility (neither of which is an
// error). Every error here aborts the whole run with a diagnostic,
// formatted the way the teacher's internal/errors.CompilerError formats
// compiler diagnostics (source line + caret) when source text is
// available.
package enginerr

import (
	"fmt"
	"strings"

	"github.com/cwbudde/ooxverify/internal/oox"
)

// Kind enumerates the fatal engine-error variants named in spec.md §7.
type Kind int

const (
	UnknownEntryPoint Kind = iota
	Unresolved
	ExpectedReference
	ExpectedConcreteReference
	ExpectedMethodMember
	CannotGetCurrentThread
	ExpectedNumberOfNeighbours
	NoAliases
)

func (k Kind) String() string {
	switch k {
	case UnknownEntryPoint:
		return "UnknownEntryPoint"
	case Unresolved:
		return "Unresolved"
	case ExpectedReference:
		return "ExpectedReference"
	case ExpectedConcreteReference:
		return "ExpectedConcreteReference"
	case ExpectedMethodMember:
		return "ExpectedMethodMember"
	case CannotGetCurrentThread:
		return "CannotGetCurrentThread"
	case ExpectedNumberOfNeighbours:
		return "ExpectedNumberOfNeighbours"
	case NoAliases:
		return "NoAliases"
	default:
		return "UnknownEngineError"
	}
}

// EngineError is a fatal engine bug, never a verdict.
type EngineError struct {
	Kind    Kind
	Detail  string
	Pos     *oox.Position
	Source  string
	File    string
}

func New(kind Kind, detail string) *EngineError {
	return &EngineError{Kind: kind, Detail: detail}
}

// WithSource attaches a source snippet + position for caret-style
// formatting, mirroring internal/errors.CompilerError.Format.
func (e *EngineError) WithSource(source, file string, pos *oox.Position) *EngineError {
	e.Source, e.File, e.Pos = source, file, pos
	return e
}

func (e *EngineError) Error() string {
	return e.Format()
}

// Format renders the error with a source snippet and a caret under the
// offending column, when position/source information is available;
// otherwise it falls back to a plain "Kind: detail" line.
func (e *EngineError) Format() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Pos == nil {
		return sb.String()
	}

	sb.WriteString("\n")
	if e.File != "" {
		fmt.Fprintf(&sb, "at %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	line := sourceLine(e.Source, e.Pos.Line)
	if line == "" {
		return sb.String()
	}
	prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
	sb.WriteString(prefix)
	sb.WriteString(line)
	sb.WriteString("\n")
	col := e.Pos.Column - 1
	if col < 0 {
		col = 0
	}
	sb.WriteString(strings.Repeat(" ", len(prefix)+col))
	sb.WriteString("^")
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}
