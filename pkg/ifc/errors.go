package ifc

import "fmt"

// NotFoundError reports a missing file, or a storey/space that could
// not be found by name
type NotFoundError struct {
	What string // "file", "storey", "space"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Name)
}

// ParseError reports that the store could not open or understand a
// model file
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GenerationError reports a failed (possibly partial) geometry
// tessellation pass
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("geometry generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExportError reports that the host document export failed
type ExportError struct {
	Document string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s: %v", e.Document, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// IOError reports a filesystem operation failure on cache or export
// directories
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
