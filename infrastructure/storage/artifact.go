// Package storage persists rendered report artifacts. The store is a local
// directory; downstream tooling retrieves artifacts by timestamp-sorted
// listing, which the naming convention supports.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

type ArtifactStore interface {
	// Save writes the artifact bytes under the canonical name and returns
	// the stored path and size.
	Save(name string, data []byte) (path string, size int64, err error)
}

// ArtifactName builds the canonical artifact file name:
// {kind}_{userID}_{timestampUTC}[_constrained].{ext}
func ArtifactName(kind domain.ReportKind, userID string, at time.Time, profile domain.RenderProfile, ext string) string {
	suffix := ""
	if profile == domain.ProfileConstrained {
		suffix = "_constrained"
	}

	return fmt.Sprintf("%s_%s_%s%s.%s", kind, userID, at.UTC().Format("20060102_150405"), suffix, ext)
}

type fileStore struct {
	dir string
}

func NewFileStore(dir string) (ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating artifact directory")
	}

	logrus.WithField("dir", dir).Info("artifact store ready")

	return &fileStore{dir: dir}, nil
}

func (f *fileStore) Save(name string, data []byte) (string, int64, error) {
	path := filepath.Join(f.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, errors.Wrap(err, "writing artifact")
	}

	return path, int64(len(data)), nil
}
