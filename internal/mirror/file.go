package mirror

import (
	"context"
	"fmt"
	"os"
)

// FileTarget replaces a file on a local or mounted filesystem.
type FileTarget struct {
	Path string
}

// Put moves the snapshot over Path. The snapshot is created next to Path so
// the rename stays on one filesystem.
func (t *FileTarget) Put(_ context.Context, path string) error {
	if err := os.Rename(path, t.Path); err != nil {
		return fmt.Errorf("replace %s: %w", t.Path, err)
	}
	return nil
}

func (t *FileTarget) String() string { return "file://" + t.Path }
