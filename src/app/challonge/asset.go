package challonge

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Asset is a file uploaded as a match attachment.
type Asset struct {
	Name        string
	ContentType string
	Content     []byte
}

// AssetSource resolves an asset reference at upload time.
type AssetSource interface {
	Load(ctx context.Context, ref string) (Asset, error)
}

// FileSource reads assets from the local file system.
type FileSource struct{}

// Load reads the file at path ref.
func (FileSource) Load(_ context.Context, ref string) (Asset, error) {
	content, err := os.ReadFile(ref)
	if err != nil {
		return Asset{}, fmt.Errorf("read asset: %w", err)
	}
	name := filepath.Base(ref)
	return Asset{Name: name, ContentType: ContentType(name, content), Content: content}, nil
}

// ContentType picks the media type from the file extension, sniffing content
// when the extension is unknown.
func ContentType(name string, content []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(content)
}
