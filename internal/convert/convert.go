// Package convert encodes values into file content and decodes them back.
//
// Exporters write through a Saver, normally an *entry.File whose Save is
// atomic. Importers read through a Getter. The package never touches paths
// itself.
package convert

import (
	"fmt"
	"os"
)

// Saver replaces the content of a destination.
type Saver interface {
	Save(content []byte) (int, error)
}

// Getter returns the full content of a source.
type Getter interface {
	Get() ([]byte, error)
}

// PermissionChanger is implemented by destinations whose mode can be set
// after an export.
type PermissionChanger interface {
	ChangePermissions(mode os.FileMode) error
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMode sets the permission bits applied after every export that wrote
// at least one byte. The destination must implement PermissionChanger.
func WithMode(mode os.FileMode) Option {
	return func(e *Exporter) { e.mode = mode }
}

// WithPretty enables indented output for the formats that support it.
func WithPretty() Option {
	return func(e *Exporter) { e.pretty = true }
}

// Exporter encodes values and saves them to one destination.
type Exporter struct {
	dst    Saver
	mode   os.FileMode
	pretty bool
}

// NewExporter returns an exporter writing to dst.
func NewExporter(dst Saver, opts ...Option) *Exporter {
	e := &Exporter{dst: dst}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Content saves raw bytes.
func (e *Exporter) Content(content []byte) (int, error) {
	return e.save(content)
}

func (e *Exporter) save(content []byte) (int, error) {
	n, err := e.dst.Save(content)
	if err != nil {
		return n, err
	}
	if n > 0 && e.mode != 0 {
		pc, ok := e.dst.(PermissionChanger)
		if !ok {
			return n, fmt.Errorf("destination %T cannot change permissions", e.dst)
		}
		if err := pc.ChangePermissions(e.mode); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Importer decodes the content of one source.
type Importer struct {
	src Getter
}

// NewImporter returns an importer reading from src.
func NewImporter(src Getter) *Importer {
	return &Importer{src: src}
}

// Content returns the raw bytes.
func (i *Importer) Content() ([]byte, error) {
	return i.src.Get()
}
