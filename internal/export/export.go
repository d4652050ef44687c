// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes catalog and research data to downloadable CSV, XLSX
// and JSON files. Each file gets a random id; the file is stored under the
// export directory as "<id>_<name>" and fetched back by id.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DownloadPrefix is the URL path under which exported files are served.
const DownloadPrefix = "/api/export/download/"

var (
	// ErrNotFound is returned by Open for an unknown or malformed id.
	ErrNotFound = errors.New("export file not found")

	// ErrUnsupportedFormat is returned by Write for an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatJSON: "application/json",
}

// ParseFormat maps a user-supplied format name to a Format. The empty
// string selects CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// File describes a written export.
type File struct {
	ID          string `json:"file_id"`
	Name        string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	Format      Format `json:"format"`
}

// Exporter writes export files into one directory.
type Exporter struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// New creates the export directory if needed.
func New(cfg types.ExportConfig) (*Exporter, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "pharmasage", "exports")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &Exporter{dir: dir, now: time.Now, newID: uuid.NewString}, nil
}

// Write renders d in format f and returns the stored file's description.
func (e *Exporter) Write(d Dataset, f Format) (File, error) {
	if _, ok := contentTypes[f]; !ok {
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	id := e.newID()
	name := fmt.Sprintf("pharmasage_%s_%s.%s", d.Kind, e.now().UTC().Format("20060102_150405"), f)
	path := filepath.Join(e.dir, id+"_"+name)

	var err error
	switch f {
	case FormatCSV:
		err = writeCSV(path, d.Sheets)
	case FormatXLSX:
		err = writeXLSX(path, d.Sheets)
	case FormatJSON:
		err = writeJSON(path, d.Records)
	}
	if err != nil {
		os.Remove(path)
		return File{}, fmt.Errorf("writing %s export: %w", f, err)
	}

	return File{
		ID:          id,
		Name:        name,
		DownloadURL: DownloadPrefix + id,
		Format:      f,
	}, nil
}

// Open returns the path and download name of the export with the given id.
func (e *Exporter) Open(id string) (path, name string, err error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	matches, err := filepath.Glob(filepath.Join(e.dir, id+"_*"))
	if err != nil {
		return "", "", fmt.Errorf("looking up export %s: %w", id, err)
	}
	if len(matches) == 0 {
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	path = matches[0]
	return path, strings.TrimPrefix(filepath.Base(path), id+"_"), nil
}

// FormatOf returns the format of a stored export file by its extension.
func FormatOf(name string) Format {
	return Format(strings.TrimPrefix(filepath.Ext(name), "."))
}

func writeCSV(path string, sheets []Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, sheet := range sheets {
		if i > 0 {
			// Sheets are separated by an empty record.
			if err := w.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := w.Write(sheet.Header); err != nil {
			return err
		}
		if err := w.WriteAll(sheet.Rows); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheetName(sheet.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		if err := f.SetSheetRow(name, "A1", &sheet.Header); err != nil {
			return err
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func writeJSON(path string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// sheetName makes name acceptable to Excel: at most 31 characters and none
// of : \ / ? * [ ].
func sheetName(name string, i int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
