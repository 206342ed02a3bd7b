// Package export writes the joined dataset to spreadsheet and CSV files.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// SheetName is the worksheet the dataset is written to.
const SheetName = "cohort"

// Header is the column order of every export.
var Header = []string{
	"movie_id", "title", "release_date", "revenue", "vote_average", "vote_count",
	"imdb_id", "rating", "dubious",
	"director_name", "director_gender", "composer_name", "composer_gender",
}

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", eris.Errorf("export: unsupported file extension %q (want .xlsx or .csv)", filepath.Ext(path))
}

// WriteFile writes rows to path in the format its extension names.
func WriteFile(path string, rows []model.DatasetRow) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return WriteXLSX(path, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// WriteXLSX saves rows as a single-sheet workbook with a header row.
func WriteXLSX(path string, rows []model.DatasetRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, Header)
	for _, r := range rows {
		addRow(sheet, Record(r))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []model.DatasetRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return eris.Wrapf(err, "csv: write movie %d", r.MovieID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

// Record renders one row in Header order. Missing attributes are empty.
func Record(r model.DatasetRow) []string {
	return []string{
		strconv.FormatInt(r.MovieID, 10),
		r.Title,
		dateOrEmpty(r.ReleaseDate),
		strconv.FormatInt(r.Revenue, 10),
		strconv.FormatFloat(r.VoteAverage, 'f', -1, 64),
		strconv.Itoa(r.VoteCount),
		deref(r.ForeignID),
		intOrEmpty(r.Rating),
		boolOrEmpty(r.Dubious),
		deref(r.DirectorName),
		genderOrEmpty(r.DirectorGender),
		deref(r.ComposerName),
		genderOrEmpty(r.ComposerGender),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func boolOrEmpty(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func genderOrEmpty(g *model.Gender) string {
	if g == nil {
		return ""
	}
	return g.String()
}
