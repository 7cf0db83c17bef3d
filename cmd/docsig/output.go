package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (printer, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		normalized = formatText
	}
	switch normalized {
	case formatText, formatJSON, formatYAML:
		return printer{w: w, format: normalized}, nil
	default:
		return printer{}, fmt.Errorf("%w: unsupported output format %q", errUsage, format)
	}
}

// print writes value as json or yaml, or calls text for the text format.
func (p printer) print(value any, text func(w io.Writer)) error {
	switch p.format {
	case formatJSON:
		encoder := json.NewEncoder(p.w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case formatYAML:
		encoder := yaml.NewEncoder(p.w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		text(p.w)
		return nil
	}
}
