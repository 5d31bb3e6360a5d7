package printers

import (
	"encoding/json"
	"io"

	"sigs.k8s.io/yaml"
)

// yamlPrinter prints objects as YAML.
type yamlPrinter struct{}

// NewYAMLPrinter creates a new YAML printer.
func NewYAMLPrinter() Printer {
	return &yamlPrinter{}
}

// PrintObj prints an object as YAML. Values take their JSON encoding first,
// so timestamps and numbers look the same in both formats.
func (p *yamlPrinter) PrintObj(v any, writer io.Writer) error {
	jsonData, err := json.Marshal(plain(v))
	if err != nil {
		return err
	}

	yamlData, err := yaml.JSONToYAML(jsonData)
	if err != nil {
		return err
	}

	_, err = writer.Write(yamlData)
	return err
}
