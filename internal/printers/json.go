package printers

import (
	"encoding/json"
	"io"
)

// jsonPrinter prints objects as JSON.
type jsonPrinter struct{}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter() Printer {
	return &jsonPrinter{}
}

// PrintObj prints an object as indented JSON.
func (p *jsonPrinter) PrintObj(v any, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(plain(v))
}
