// Package printers renders entities and operation summaries for the terminal.
// Entities print as YAML (the default for describe), JSON or bare identifiers.
package printers

import (
	"fmt"
	"io"

	"cloudpick/internal/domain"
)

// Printer knows how to print entities and decoded results.
type Printer interface {
	// PrintObj prints v, which may be a domain.Entity, a []domain.Entity or
	// any JSON-encodable value.
	PrintObj(v any, writer io.Writer) error
}

// NewPrinter returns the printer for format.
func NewPrinter(format string) (Printer, error) {
	switch format {
	case "", "yaml":
		return NewYAMLPrinter(), nil
	case "json":
		return NewJSONPrinter(), nil
	case "name":
		return NewNamePrinter(), nil
	}
	return nil, &domain.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported output format %q", format)}
}

// SupportedFormats lists the formats NewPrinter accepts.
func SupportedFormats() []string {
	return []string{"yaml", "json", "name"}
}

// plain converts entities into encoder-friendly maps.
func plain(v any) any {
	switch t := v.(type) {
	case domain.Entity:
		return t.Map()
	case []domain.Entity:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			out = append(out, e.Map())
		}
		return out
	}
	return v
}
