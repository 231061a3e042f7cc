package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool { return hasSuffix(path, ".xlsx") }

// Read loads the selected sheet. Trailing empty cells are dropped by excelize, so
// short rows are padded to the header width; longer rows are malformed.
func (xlsxReader) Read(path string, opt Options) (*Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx %s: %v", ErrParse, baseName(path), err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", baseName(path), err)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrParse, sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s sheet %q", ErrEmpty, baseName(path), sheet)
	}
	src := &Source{Name: baseName(path), Header: trimAll(rows[0])}
	width := len(src.Header)
	for i, row := range rows[1:] {
		if len(row) > width {
			return nil, fmt.Errorf("%w: %s sheet %q row %d: wrong number of fields", ErrParse, src.Name, sheet, i+2)
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		src.Rows = append(src.Rows, row)
	}
	return src, nil
}

func pickSheet(sheets []string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrEmpty)
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found. Available sheets: %s", opt.SheetName, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
	}
	return sheets[idx-1], nil
}
