package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/fsutil"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
)

// FileRepository rewrites the compose document at a fixed path.
type FileRepository struct {
	// path is the filesystem location of docker-compose.yml.
	path string
	// rules select the lines to rewrite.
	rules Rules
}

// NewFileRepository creates a repository for the compose document at path.
func NewFileRepository(path string, rules Rules) *FileRepository {
	return &FileRepository{
		path:  filepath.Clean(path),
		rules: rules,
	}
}

// Path returns the compose document location.
func (r *FileRepository) Path() string {
	return r.path
}

// Plan returns the rewritten document without writing it.
func (r *FileRepository) Plan(ctx context.Context, packageVersion, upstreamTag string) ([]byte, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read compose document: %w", err)
	}

	rewritten, changes := Rewrite(string(contents), r.rules, packageVersion, upstreamTag)

	logger.DebugKV(ctx, "Compose lines rewritten",
		"path", r.path, "image_lines", changes.ImageLines, "env_lines", changes.EnvLines)

	if changes.ImageLines == 0 {
		logger.WarnKV(ctx, "No image line found in compose document",
			"path", r.path, "image", r.rules.ImageName)
	}

	if changes.EnvLines == 0 {
		logger.WarnKV(ctx, "No upstream version line found in compose document",
			"path", r.path, "key", r.rules.EnvKey)
	}

	if err = Verify([]byte(rewritten), r.rules, packageVersion, upstreamTag); err != nil {
		logger.WarnKV(ctx, "Rewritten compose document did not verify", "path", r.path, "error", err)
	}

	return []byte(rewritten), nil
}

// Update rewrites the compose document in place.
func (r *FileRepository) Update(ctx context.Context, packageVersion, upstreamTag string) error {
	data, err := r.Plan(ctx, packageVersion, upstreamTag)
	if err != nil {
		return err
	}

	if err = fsutil.ReplaceFile(r.path, data); err != nil {
		return fmt.Errorf("write compose document: %w", err)
	}

	return nil
}
