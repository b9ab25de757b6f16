// Package diag formats the tagged error records produced by every stage of
// the MiniLang pipeline (lex, parse, semantic, runtime) with source context
// and a caret pointing at the offending column.
package diag

import (
	"fmt"
	"strings"
)

// Stage identifies which pipeline phase raised an Error.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageSemantic Stage = "semantic"
	StageRuntime  Stage = "runtime"
)

// Error is the structured record surfaced to callers of the core: every
// stage halts on its first Error instead of attempting recovery.
type Error struct {
	Stage   Stage
	Message string
	Line    int
	Column  int
}

func New(stage Stage, line, column int, format string, args ...any) *Error {
	return &Error{Stage: stage, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s", e.Stage, e.Line, e.Column, e.Message)
}

// Format renders a single error with a source excerpt and a caret
// pointing at the offending column.
func Format(e *Error, source string, color bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s error at line %d:%d\n", strings.ToUpper(string(e.Stage))[:1]+string(e.Stage)[1:], e.Line, e.Column)

	if line := sourceLine(source, e.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		col := e.Column - 1
		if col < 0 {
			col = 0
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

// FormatAll renders every error in order, separated by blank lines.
func FormatAll(errs []*Error, source string, color bool) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, Format(e, source, color))
	}
	return strings.Join(parts, "\n\n")
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
