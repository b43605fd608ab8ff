// Package export renders the catalog for people and other systems:
// JSON, YAML or CSV, optionally brotli-compressed.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"gopkg.in/yaml.v3"

	"academy/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want json, yaml or csv)", s)
}

// Ext is the file extension for f, without compression suffix.
func (f Format) Ext() string { return "." + string(f) }

// Write renders cat to w. CSV carries the lessons table followed by a
// blank line and the previews table.
func Write(w io.Writer, cat domain.Catalog, f Format) error {
	cat = cat.Normalize()
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		if err := WriteLessonsCSV(w, cat); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		return WritePreviewsCSV(w, cat)
	}
	return fmt.Errorf("export: unknown format %q", f)
}

func Render(cat domain.Catalog, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, cat, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON and ReadYAML load a catalog written by Write.
func ReadJSON(r io.Reader) (domain.Catalog, error) {
	var c domain.Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return domain.Catalog{}, fmt.Errorf("export: read json: %w", err)
	}
	return c.Normalize(), nil
}

func ReadYAML(r io.Reader) (domain.Catalog, error) {
	var c domain.Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return domain.Catalog{}, fmt.Errorf("export: read yaml: %w", err)
	}
	return c.Normalize(), nil
}

// Compress brotli-encodes b at the default quality.
func Compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := bw.Write(b); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decompress(b []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
}
