package openapi

import "fmt"

// DiagCode classifies a non-fatal problem found while repairing, resolving,
// or extracting a document.
type DiagCode string

const (
	DiagCycle        DiagCode = "cycle"
	DiagDepth        DiagCode = "depth"
	DiagDangling     DiagCode = "dangling"
	DiagEmptyServer  DiagCode = "empty-server"
	DiagSkippedParam DiagCode = "skipped-parameter"
	DiagNoSuccess    DiagCode = "no-success-response"
)

// Diagnostic is one recorded warning, tied to a location in the document.
type Diagnostic struct {
	Code    DiagCode
	Where   string // document location, e.g. "#/components/schemas/Pet" or "paths./pets.get"
	Line    int    // source line when known, 0 otherwise
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] %s (line %d): %s", d.Code, d.Where, d.Line, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Where, d.Message)
}

// Diagnostics collects warnings during resolution and extraction. The parse
// paths never log; callers inspect the collector after the fact and decide
// what to surface.
type Diagnostics struct {
	entries []Diagnostic
}

func (d *Diagnostics) add(code DiagCode, where string, line int, format string, args ...any) {
	if d == nil {
		return
	}
	d.entries = append(d.entries, Diagnostic{
		Code:    code,
		Where:   where,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Entries returns all recorded diagnostics in the order they were added.
func (d *Diagnostics) Entries() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.entries
}

// Count reports how many diagnostics were recorded.
func (d *Diagnostics) Count() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// ByCode returns the diagnostics recorded with the given code.
func (d *Diagnostics) ByCode(code DiagCode) []Diagnostic {
	if d == nil {
		return nil
	}
	var out []Diagnostic
	for _, e := range d.entries {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}
