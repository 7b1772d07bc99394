package session

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exporter writes a session in one output format.
type Exporter interface {
	Export(s *Session, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, markdown)", format)
	}
}

// JSONExporter exports sessions as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(s *Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (e *JSONExporter) Extension() string   { return "json" }
func (e *JSONExporter) ContentType() string { return "application/json" }

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

func (e *YAMLExporter) Export(s *Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(s)
}

func (e *YAMLExporter) Extension() string   { return "yaml" }
func (e *YAMLExporter) ContentType() string { return "application/yaml" }

// MarkdownExporter exports sessions as a readable transcript.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(s *Session, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Session %s\n\n", s.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(s.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range s.Messages {
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", msg.Role.Label(), msg.Timestamp.Format("15:04:05"), msg.Content)
		if i < len(s.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

func (e *MarkdownExporter) Extension() string   { return "md" }
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
