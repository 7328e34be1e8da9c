package chat

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// SaveImage decodes an image message and writes it into dir under a random
// name. The extension is chosen by sniffing the decoded bytes. It returns
// the path of the written file.
func SaveImage(dir string, m Message) (string, error) {
	data, err := m.ImageData()
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		ext = ".png"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	return path, nil
}
