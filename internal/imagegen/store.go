package imagegen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes generated images under a single output directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes data as output_<uuid>.png and returns the final path. The file
// appears under its final name only once fully written.
func (s *Store) Save(data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".output-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}

	final := filepath.Join(s.dir, fmt.Sprintf("output_%s.png", uuid.NewString()))
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename image: %w", err)
	}
	return final, nil
}
