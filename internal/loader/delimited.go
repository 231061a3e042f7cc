package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type delimitedReader struct{}

func (delimitedReader) CanRead(path string) bool {
	return hasSuffix(path, ".csv", ".tsv", ".txt")
}

func (delimitedReader) Read(path string, opt Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return readDelimited(f, baseName(path), delim)
}

func readDelimited(in io.Reader, name string, delim rune) (*Source, error) {
	r := csv.NewReader(in)
	r.Comma = delim
	r.TrimLeadingSpace = true
	// Every row must match the header width.
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmpty, name)
		}
		return nil, parseErr(name, err)
	}
	src := &Source{Name: name, Header: trimAll(header)}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, parseErr(name, err)
		}
		src.Rows = append(src.Rows, rec)
	}
	return src, nil
}

func parseErr(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %s line %d: %v", ErrParse, name, pe.Line, pe.Err)
	}
	return fmt.Errorf("%w: %s: %v", ErrParse, name, err)
}

func sniffDelimiter(path string) rune {
	if hasSuffix(path, ".tsv") {
		return '\t'
	}
	return ','
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	}
	return out
}
