// Package export renders the board as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskboard/pkg/task"
)

// ErrUnknownFormat is returned for a format other than json, csv or pdf.
var ErrUnknownFormat = errors.New("unknown export format")

// Format describes a rendered export.
type Format struct {
	Ext         string
	ContentType string
}

var formats = map[string]Format{
	"json": {Ext: "json", ContentType: "application/json"},
	"csv":  {Ext: "csv", ContentType: "text/csv"},
	"pdf":  {Ext: "pdf", ContentType: "application/pdf"},
}

// Lookup returns the Format for a name, case-insensitively.
func Lookup(name string) (Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return f, nil
}

type column struct {
	name  string
	tasks []task.Task
}

func columns(b task.Board) []column {
	return []column{
		{"To-Do", b.ToDo},
		{"In Progress", b.InProgress},
		{"Completed", b.Completed},
	}
}

// Render renders b in the named format.
func Render(b task.Board, name string) ([]byte, Format, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, f, err
	}
	var data []byte
	switch f.Ext {
	case "json":
		data, err = json.MarshalIndent(b, "", "  ")
	case "csv":
		data, err = renderCSV(b)
	case "pdf":
		data, err = renderPDF(b)
	}
	if err != nil {
		return nil, f, fmt.Errorf("render %s: %w", f.Ext, err)
	}
	return data, f, nil
}

func renderCSV(b task.Board) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "column", "group", "title", "description", "persona", "completed"})
	for _, col := range columns(b) {
		for _, t := range col.tasks {
			_ = w.Write([]string{
				strconv.Itoa(t.ID),
				col.name,
				strconv.Itoa(t.Group),
				t.Title,
				t.Description,
				t.Persona,
				strconv.FormatBool(t.Completed),
			})
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderPDF(b task.Board) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Task Board")
	pdf.Ln(12)

	for _, col := range columns(b) {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(40, 8, fmt.Sprintf("%s (%d)", col.name, len(col.tasks)))
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		if len(col.tasks) == 0 {
			pdf.MultiCell(0, 6, "-", "0", "L", false)
		}
		for _, t := range col.tasks {
			line := fmt.Sprintf("#%d [group %d] %s - %s (%s)", t.ID, t.Group, t.Title, t.Description, t.Persona)
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
