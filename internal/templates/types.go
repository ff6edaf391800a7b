// Package templates renders a template tree into a target directory.
package templates

import (
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Params is the nested parameter mapping placeholders are resolved against.
// It is built once before emission and only read afterwards.
type Params map[string]any

// MissingKeyPolicy decides what a placeholder with no value renders to.
type MissingKeyPolicy int

const (
	// MissingEmpty renders unknown placeholders as empty text.
	MissingEmpty MissingKeyPolicy = iota

	// MissingError fails rendering on the first unknown placeholder.
	MissingError
)

// String returns the policy name.
func (p MissingKeyPolicy) String() string {
	switch p {
	case MissingEmpty:
		return "empty"
	case MissingError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one discovered template file.
type Entry struct {
	// RelPath is the slash-separated path from the template root.
	RelPath string

	// Name is the base filename.
	Name string

	// SourcePath is the path within the template filesystem.
	SourcePath string
}

// Output is a rendered file ready to be written.
type Output struct {
	// RelPath is the slash-separated destination relative to the target directory.
	RelPath string

	// Path is the destination path in the target filesystem.
	Path string

	// Content is the rendered content.
	Content []byte
}

// EmitOptions configures template emission.
type EmitOptions struct {
	// Source is the template tree, rooted at the template root.
	Source fs.FS

	// Target is the filesystem files are written to.
	Target afero.Fs

	// TargetDir is the directory destinations are resolved against.
	TargetDir string

	// Params supplies placeholder values.
	Params Params

	// Policy controls rendering of unknown placeholders.
	Policy MissingKeyPolicy

	// Logger receives skip notices. Defaults to the output package logger.
	Logger *log.Logger

	// Concurrency bounds the entries processed in parallel. Values below 1 mean 1.
	Concurrency int

	// DryRun makes every decision but creates no directories or files.
	DryRun bool
}

// Result contains the outcome of an emission run.
type Result struct {
	// TargetDir is the directory files were written to.
	TargetDir string

	// Created lists destinations written, relative to TargetDir.
	Created []string

	// Skipped lists destinations left untouched because they already existed.
	Skipped []string

	// Excluded lists reserved template files that are never emitted.
	Excluded []string

	// DryRun reports whether files were actually written.
	DryRun bool
}
