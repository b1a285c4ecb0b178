// internal/app/features/submissions/storagehelper.go
package submissions

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// storeArtifact uploads one submission file under the group's prefix and
// returns the storage path. The path is submissions/<group>/<uuid8>-<name>
// so resubmissions never overwrite earlier artifacts.
func storeArtifact(ctx context.Context, store storage.Store, groupCode, filename string, data []byte, contentType string) (string, error) {
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join("submissions", groupCode, name))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("store %s: %w", path, err)
	}
	return path, nil
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore. Long names are truncated with the
// extension preserved.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	out := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}

	if len(out) == 0 {
		return "file"
	}
	if len(out) > 100 {
		ext := filepath.Ext(string(out))
		if len(ext) > 0 && len(ext) < 10 {
			out = append(out[:100-len(ext)], ext...)
		} else {
			out = out[:100]
		}
	}
	return string(out)
}
