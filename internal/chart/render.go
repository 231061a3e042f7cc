package chart

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/noshow-cli/internal/utils"
)

// Job pairs a figure with the builder that draws it.
type Job struct {
	Spec  Spec
	Build func(Spec) (*plot.Plot, error)
}

// Renderer saves figures under Dir as <name>.<Format>.
type Renderer struct {
	Dir    string
	Format string
	Width  vg.Length
	Height vg.Length
	log    *slog.Logger
}

// NewRenderer returns a renderer sized in inches.
func NewRenderer(dir, format string, widthIn, heightIn float64, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		Dir:    dir,
		Format: format,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
		log:    log,
	}
}

// Path returns where a figure named name is written.
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.Dir, name+"."+r.Format)
}

// Render builds and saves one figure. A panic inside the plotting library is
// returned as an error.
func (r *Renderer) Render(j Job) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			path = ""
			err = fmt.Errorf("chart %s: panic: %v", j.Spec.Name, rec)
		}
	}()
	if err := utils.EnsureDir(r.Dir); err != nil {
		return "", err
	}
	p, err := j.Build(j.Spec)
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", j.Spec.Name, err)
	}
	path = r.Path(j.Spec.Name)
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("chart %s: save: %w", j.Spec.Name, err)
	}
	r.log.Debug("chart written", slog.String("path", path))
	return path, nil
}

// RenderAll renders every job, continuing past failures. It returns the paths
// written and all failures combined.
func (r *Renderer) RenderAll(jobs []Job) ([]string, error) {
	var result *multierror.Error
	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		p, err := r.Render(j)
		if err != nil {
			r.log.Warn("chart failed", slog.String("chart", j.Spec.Name), slog.Any("error", err))
			result = multierror.Append(result, err)
			continue
		}
		paths = append(paths, p)
	}
	return paths, result.ErrorOrNil()
}
