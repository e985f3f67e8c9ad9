package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FileRepository keeps one JSON file per gallery in a directory.
type FileRepository struct {
	dir string
}

// Compile-time interface check.
var _ Repository = (*FileRepository)(nil)

// NewFileRepository creates the directory if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery directory %s: %w", dir, err)
	}
	return &FileRepository{dir: dir}, nil
}

// Dir returns the directory the repository writes to.
func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+fileExt)
}

func (r *FileRepository) Get(_ context.Context, id string) (*Gallery, error) {
	data, err := os.ReadFile(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gallery %s: %w", id, err)
	}
	return Decode(id, data)
}

func (r *FileRepository) List(ctx context.Context) ([]*Gallery, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, keyPrefix+"*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list galleries in %s: %w", r.dir, err)
	}

	out := make([]*Gallery, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(m), fileExt)
		data, err := os.ReadFile(m)
		if err != nil {
			log.Warn().Err(err).Str("gallery", id).Msg("Skipping unreadable gallery file")
			continue
		}
		g, err := Decode(id, data)
		if err != nil {
			log.Warn().Err(err).Str("gallery", id).Msg("Skipping unparsable gallery file")
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// Put writes the record to a temp file and renames it over the target, so
// readers never observe a partially written gallery.
func (r *FileRepository) Put(_ context.Context, g *Gallery) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}

	tmp := filepath.Join(r.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write gallery %s: %w", g.ID, err)
	}
	if err := os.Rename(tmp, r.path(g.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace gallery %s: %w", g.ID, err)
	}

	log.Debug().Str("gallery", g.ID).Str("dir", r.dir).Msg("Gallery written")
	return nil
}

func (r *FileRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete gallery %s: %w", id, err)
	}
	return nil
}
