package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/eebc-chat/internal"
)

// WriteFile exports session in format to path. An empty path writes
// session-<id>.<ext> in the working directory. It returns the path written.
func WriteFile(session *internal.Session, format, path string) (string, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if path == "" {
		path = fmt.Sprintf("session-%s.%s", shortID(session.ID), exporter.Extension())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &internal.ExportError{Format: format, Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(session, f); err != nil {
		_ = f.Close()
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	internal.LogInfo("exported session %s to %s", session.ID, path)
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
