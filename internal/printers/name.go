package printers

import (
	"fmt"
	"io"

	"cloudpick/internal/domain"
)

// namePrinter prints entity identifiers, one per line.
type namePrinter struct{}

// NewNamePrinter creates a new name printer.
func NewNamePrinter() Printer {
	return &namePrinter{}
}

func (p *namePrinter) PrintObj(v any, writer io.Writer) error {
	switch t := v.(type) {
	case domain.Entity:
		_, err := fmt.Fprintln(writer, t.ID())
		return err
	case []domain.Entity:
		for _, e := range t {
			if _, err := fmt.Fprintln(writer, e.ID()); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("name output needs entities, got %T", v)
}
