package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrFileNotFound reports that the input path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrParse reports a malformed input row.
	ErrParse = errors.New("parse error")
	// ErrEmpty reports an input without a header row.
	ErrEmpty = errors.New("empty input")
)

// Options controls how a file is read.
type Options struct {
	// Delimiter overrides the extension default for delimited text. 0 means auto.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is used otherwise.
	SheetName  string
	SheetIndex int
}

// Source is the raw content of a tabular file: a header and rows of equal width.
type Source struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Reader reads one file format into a Source.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Source, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(xlsxReader{})
	Register(delimitedReader{})
}

// Load picks a reader by file name and reads the whole file in one pass.
func Load(path string, opt Options) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	// Anything unrecognized is treated as delimited text.
	return delimitedReader{}.Read(path, opt)
}

// Frame builds a typed DataFrame; column types (int, float, bool, string) are inferred.
// Cells are kept verbatim: no value is treated as missing. A header without rows
// yields an empty frame of string columns.
func (s *Source) Frame() (dataframe.DataFrame, error) {
	if len(s.Header) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrEmpty, s.Name)
	}
	if len(s.Rows) == 0 {
		cols := make([]series.Series, len(s.Header))
		for i, name := range s.Header {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return df, fmt.Errorf("build frame: %w", df.Err)
		}
		return df, nil
	}
	records := make([][]string, 0, len(s.Rows)+1)
	records = append(records, s.Header)
	records = append(records, s.Rows...)
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df, fmt.Errorf("build frame: %w", df.Err)
	}
	return df, nil
}

// Len returns the number of data rows.
func (s *Source) Len() int { return len(s.Rows) }

func baseName(path string) string { return filepath.Base(path) }

func hasSuffix(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}
