package report

import (
	"path/filepath"

	"github.com/KaramelBytes/noshow-cli/internal/utils"
)

// Report file names inside the output directory.
const (
	MarkdownFile = "report.md"
	JSONFile     = "report.json"
	XLSXFile     = "report.xlsx"
)

// WriteAll writes the Markdown and JSON reports, and the workbook when
// withXLSX is set, into dir. It returns the paths written.
func (f *Findings) WriteAll(dir string, withXLSX bool) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	md := filepath.Join(dir, MarkdownFile)
	if err := utils.SafeWriteFile(md, []byte(f.Markdown())); err != nil {
		return nil, err
	}
	js := filepath.Join(dir, JSONFile)
	b, err := f.JSON()
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(js, b); err != nil {
		return nil, err
	}
	paths := []string{md, js}
	if withXLSX {
		x := filepath.Join(dir, XLSXFile)
		if err := f.WriteXLSX(x); err != nil {
			return paths, err
		}
		paths = append(paths, x)
	}
	return paths, nil
}
