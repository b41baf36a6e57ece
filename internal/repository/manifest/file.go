package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/fsutil"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
)

// FileRepository reads and writes the manifest at a fixed path.
type FileRepository struct {
	// path is the filesystem location of dappnode_package.json.
	path string
}

// NewFileRepository creates a repository for the manifest at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the recorded package version and upstream tag.
func (r *FileRepository) Load(_ context.Context) (*upstream.Manifest, error) {
	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	version, err := doc.String(FieldVersion)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", r.path, err)
	}

	upstreamTag, err := doc.String(FieldUpstream)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", r.path, err)
	}

	return &upstream.Manifest{
		Version:  version,
		Upstream: upstreamTag,
	}, nil
}

// Save rewrites the version and upstream fields, leaving every other field untouched.
func (r *FileRepository) Save(ctx context.Context, m *upstream.Manifest) error {
	doc, err := r.read()
	if err != nil {
		return err
	}

	if err = doc.SetString(FieldVersion, m.Version); err != nil {
		return err
	}

	if err = doc.SetString(FieldUpstream, m.Upstream); err != nil {
		return err
	}

	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("manifest %s: %w", r.path, err)
	}

	if err = fsutil.ReplaceFile(r.path, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	logger.DebugKV(ctx, "Manifest written", "path", r.path, "bytes", len(data))

	return nil
}

func (r *FileRepository) read() (*Document, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	doc, err := Decode(contents)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", r.path, err)
	}

	return doc, nil
}
