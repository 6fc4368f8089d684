package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// File reads a whole Snapshot from a single JSON or YAML document.
type File struct {
	path string
}

// NewFile returns a File source for path. The format follows the extension:
// .yaml and .yml are YAML, everything else is JSON.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load implements Source.
func (f *File) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "file: load")
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "file: read %s", f.path)
	}

	var snap Snapshot
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, eris.Wrapf(err, "file: decode yaml %s", f.path)
		}
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, eris.Wrapf(err, "file: decode json %s", f.path)
		}
	}

	if err := snap.checkFinite(); err != nil {
		return nil, eris.Wrapf(err, "file: %s", f.path)
	}

	logLoaded("file", &snap)
	return &snap, nil
}

// Close implements Source.
func (f *File) Close() error { return nil }
