package normalisers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// extensionTypes covers extensions that mime.TypeByExtension does not know
// on every platform.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".csv":      "text/csv",
	".json":     "application/json",
}

// DetectContentType guesses a media type from the filename, falling back to
// content sniffing.
func DetectContentType(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
