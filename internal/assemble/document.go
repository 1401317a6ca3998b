package assemble

import (
	"fmt"
	"strings"
)

// Document is an assembled context ready for the output sinks
type Document struct {
	Name        string
	Description string
	Result      *Result
}

// Header renders "Context: <name>", an optional description line and a blank line
func Header(name, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Context: %s\n", name)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	b.WriteString("\n")
	return b.String()
}

// String renders the header followed by the body
func (d *Document) String() string {
	if d.Result == nil {
		return Header(d.Name, d.Description)
	}
	return Header(d.Name, d.Description) + d.Result.Body
}

// Summary is the line-count line reported after a run
func (d *Document) Summary() string {
	if d.Result == nil {
		return "Total lines: 0"
	}
	return fmt.Sprintf("Total lines: %d", d.Result.TotalLines)
}
