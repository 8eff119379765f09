package dual

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// ModelCollection manages a directory of generation checkpoints: "current"
// always holds the active model, and "0", "1", "2", ... hold every
// promoted ancestor, so selfplay workers can be pointed at a specific past
// generation (for evaluation matches) as well as the live one.
type ModelCollection struct {
	dir string
}

// NewModelCollection opens (creating if necessary) a collection rooted at
// dir.
func NewModelCollection(dir string) (*ModelCollection, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "dual: create model collection directory")
	}
	return &ModelCollection{dir: dir}, nil
}

// CurrentPath is the checkpoint file path for the live model.
func (m *ModelCollection) CurrentPath() string {
	return filepath.Join(m.dir, "current", "model.gob")
}

// GenerationPath is the checkpoint file path for a specific numbered
// generation.
func (m *ModelCollection) GenerationPath(gen int) string {
	return filepath.Join(m.dir, strconv.Itoa(gen), "model.gob")
}

// CountGenerations returns the smallest non-negative integer with no
// corresponding subdirectory, i.e. the count of contiguously numbered
// generations saved so far.
func (m *ModelCollection) CountGenerations() int {
	n := 0
	for {
		if _, err := os.Stat(filepath.Join(m.dir, strconv.Itoa(n))); os.IsNotExist(err) {
			return n
		}
		n++
	}
}

// Promote snapshots the current model into the next numbered generation
// slot, returning the generation number it was assigned.
func (m *ModelCollection) Promote() (int, error) {
	gen := m.CountGenerations()
	genDir := filepath.Join(m.dir, strconv.Itoa(gen))
	if err := os.MkdirAll(genDir, 0755); err != nil {
		return 0, errors.Wrap(err, "dual: create generation directory")
	}
	data, err := os.ReadFile(m.CurrentPath())
	if err != nil {
		return 0, errors.Wrap(err, "dual: read current model")
	}
	if err := os.WriteFile(filepath.Join(genDir, "model.gob"), data, 0644); err != nil {
		return 0, errors.Wrap(err, "dual: write generation model")
	}
	return gen, nil
}

// SaveCurrent writes data as the live model, creating the "current"
// subdirectory if needed.
func (m *ModelCollection) SaveCurrent(data []byte) error {
	dir := filepath.Join(m.dir, "current")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "dual: create current directory")
	}
	return os.WriteFile(m.CurrentPath(), data, 0644)
}
