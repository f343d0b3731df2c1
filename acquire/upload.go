// Package acquire brings source media into a request workspace, either from
// an uploaded body or by resolving and downloading a remote video URL.
package acquire

import (
	"fmt"
	"io"
	"os"

	"github.com/skillsenselab/mediagate/util"
	"github.com/skillsenselab/mediagate/workspace"
)

// SaveUpload writes an uploaded body to a workspace file named after the
// sanitized base of the client-supplied name. Returns the local path.
func SaveUpload(ws *workspace.Workspace, name string, r io.Reader) (string, error) {
	dst := ws.Path(util.SanitizeFilename(name, "upload"))

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return dst, nil
}
