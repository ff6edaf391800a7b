package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	oerrors "github.com/xymatic/modinit/internal/errors"
)

// skeletonFS holds the built-in Node module template tree. The all: prefix
// keeps the underscore-masked files.
//
//go:embed all:skeleton
var skeletonFS embed.FS

// Skeleton returns the built-in template tree rooted at its template root.
func Skeleton() fs.FS {
	sub, err := fs.Sub(skeletonFS, "skeleton")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}

// OpenSource returns the template tree at dir, or the built-in skeleton
// when dir is empty.
func OpenSource(dir string) (fs.FS, error) {
	if dir == "" {
		return Skeleton(), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, oerrors.NewConfigError(
			fmt.Sprintf("cannot open template directory: %v", err),
			dir,
			"Pass an existing directory with --templates.",
		)
	}
	if !info.IsDir() {
		return nil, oerrors.NewConfigError(
			fmt.Sprintf("%s is not a directory", dir),
			dir,
			"Pass an existing directory with --templates.",
		)
	}

	return os.DirFS(dir), nil
}

// ListTemplateFiles returns the relative paths of every file in fsys.
func ListTemplateFiles(fsys fs.FS) ([]string, error) {
	entries, err := Discover(fsys)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.RelPath)
	}
	return files, nil
}
