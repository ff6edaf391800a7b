package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	oerrors "github.com/xymatic/modinit/internal/errors"
	"github.com/xymatic/modinit/internal/output"
)

// reservedNames are template-root files that belong to the generator
// itself and are never emitted.
var reservedNames = map[string]bool{
	"index.js":      true,
	genericTestName: true,
}

// Emitter renders a template tree into a target directory.
type Emitter struct {
	opts     EmitOptions
	renderer *Renderer
	logger   *log.Logger

	mu     sync.Mutex
	result *Result
}

// NewEmitter creates a new emitter with the given options.
func NewEmitter(opts EmitOptions) *Emitter {
	logger := opts.Logger
	if logger == nil {
		logger = output.Logger()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Emitter{
		opts:     opts,
		renderer: NewRenderer(opts.Params, opts.Policy),
		logger:   logger,
	}
}

// Emit walks the template tree and writes every rendered entry whose
// destination does not exist yet. Entries are processed concurrently; the
// first fatal error stops entries that have not started, and Emit returns
// only once every started entry has settled. Files already written are
// kept.
func (e *Emitter) Emit(ctx context.Context) (*Result, error) {
	e.result = &Result{
		TargetDir: e.opts.TargetDir,
		DryRun:    e.opts.DryRun,
	}

	entries, err := Discover(e.opts.Source)
	if err != nil {
		return nil, err
	}

	output.Debug("emitting templates",
		"entries", len(entries),
		"target", e.opts.TargetDir,
		"policy", e.opts.Policy,
		"dryRun", e.opts.DryRun)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, entry := range entries {
		entry := entry
		if reservedNames[entry.RelPath] {
			e.record(&e.result.Excluded, entry.RelPath)
			continue
		}

		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return e.emitEntry(entry)
		})
	}

	if err := g.Wait(); err != nil {
		return e.sortedResult(), err
	}

	// Cancellation before any entry started leaves the group without an error.
	if err := ctx.Err(); err != nil {
		return e.sortedResult(), err
	}

	return e.sortedResult(), nil
}

// Discover lists every regular file under the root of fsys in lexical order.
func Discover(fsys fs.FS) ([]Entry, error) {
	var entries []Entry

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		entries = append(entries, Entry{
			RelPath:    p,
			Name:       d.Name(),
			SourcePath: p,
		})
		return nil
	})
	if err != nil {
		return nil, oerrors.NewIOError("walking templates", ".", err)
	}

	return entries, nil
}

// emitEntry takes one entry through guard, render, and write.
func (e *Emitter) emitEntry(entry Entry) error {
	rawDest := e.targetPath(entry.RelPath)
	exists, err := e.exists(rawDest)
	if err != nil {
		return err
	}
	if exists {
		e.skip(entry.RelPath)
		return nil
	}

	rendered, err := e.renderer.RenderString(entry.RelPath)
	if err != nil {
		return oerrors.NewTemplateError(entry.RelPath, err)
	}
	relDest, err := cleanDest(rendered)
	if err != nil {
		return oerrors.NewTemplateError(entry.RelPath, err)
	}
	relDest = rewriteDest(entry.Name, relDest)

	// Rendering or unmasking can land on a path the raw guard did not see.
	dest := e.targetPath(relDest)
	if dest != rawDest {
		exists, err := e.exists(dest)
		if err != nil {
			return err
		}
		if exists {
			e.skip(relDest)
			return nil
		}
	}

	out, err := e.render(entry, relDest, dest)
	if err != nil {
		return err
	}

	if err := e.write(out); err != nil {
		return err
	}

	e.record(&e.result.Created, out.RelPath)
	return nil
}

// render reads and renders the content of entry.
func (e *Emitter) render(entry Entry, relDest, dest string) (*Output, error) {
	content, err := fs.ReadFile(e.opts.Source, entry.SourcePath)
	if err != nil {
		return nil, oerrors.NewIOError("reading template", entry.RelPath, err)
	}

	content, err = e.renderer.RenderFile(content)
	if err != nil {
		return nil, oerrors.NewTemplateError(entry.RelPath, err)
	}

	if strings.HasSuffix(entry.Name, ".json") {
		content, err = NormalizeJSON(content)
		if err != nil {
			return nil, oerrors.NewTemplateError(entry.RelPath, fmt.Errorf("rendered JSON is invalid: %w", err))
		}
	}

	return &Output{RelPath: relDest, Path: dest, Content: content}, nil
}

func (e *Emitter) write(out *Output) error {
	if e.opts.DryRun {
		output.Debug("would create file", "path", out.RelPath)
		return nil
	}

	dir := filepath.Dir(out.Path)
	if err := e.opts.Target.MkdirAll(dir, 0o755); err != nil {
		return oerrors.NewIOError("creating directory", dir, err)
	}

	if err := afero.WriteFile(e.opts.Target, out.Path, out.Content, 0o644); err != nil {
		return oerrors.NewIOError("writing file", out.Path, err)
	}

	output.Debug("created file", "path", out.RelPath)
	return nil
}

func (e *Emitter) exists(p string) (bool, error) {
	_, err := e.opts.Target.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, oerrors.NewIOError("checking destination", p, err)
}

func (e *Emitter) skip(relPath string) {
	e.logger.Info("ignoring: " + relPath)
	e.record(&e.result.Skipped, relPath)
}

func (e *Emitter) targetPath(relPath string) string {
	return filepath.Join(e.opts.TargetDir, filepath.FromSlash(relPath))
}

func (e *Emitter) record(list *[]string, relPath string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	*list = append(*list, relPath)
}

func (e *Emitter) sortedResult() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	sort.Strings(e.result.Created)
	sort.Strings(e.result.Skipped)
	sort.Strings(e.result.Excluded)
	return e.result
}

// cleanDest cleans a rendered destination and rejects ones that have no
// filename or escape the target directory.
func cleanDest(rendered string) (string, error) {
	if rendered == "" || strings.HasSuffix(rendered, "/") {
		return "", fmt.Errorf("destination %q renders to an empty filename", rendered)
	}

	cleaned := path.Clean(rendered)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("destination %q is outside the target directory", rendered)
	}
	return cleaned, nil
}

// NormalizeJSON re-serializes JSON with two-space indentation and a
// trailing newline. Key order is preserved.
func NormalizeJSON(content []byte) ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, content); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')

	return out.Bytes(), nil
}
