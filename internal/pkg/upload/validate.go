package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrExtensionNotAllowed = errors.New("only JPG, JPEG, PNG, GIF, WEBP, AVIF, BMP and PDF files are supported")
	ErrScriptableContent   = errors.New("HTML, SVG and XML content is not allowed")
	ErrTypeNotSupported    = errors.New("file type is not supported")
	ErrTypeMismatch        = errors.New("file content does not match its extension")
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
	// SVG stays excluded until uploads are sanitized
}

// ValidateBySniff checks the filename extension and the first bytes (head)
// against a whitelist. Returns the detected mime type or an error.
func ValidateBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := allowedExt[ext]
	if !ok {
		return "", ErrExtensionNotAllowed
	}

	detected := http.DetectContentType(head)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}

	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrScriptableContent
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrScriptableContent
	}

	// AVIF is not sniffed by net/http
	if detected == "application/octet-stream" && ext == ".avif" {
		return expected, nil
	}

	if detected == expected {
		return detected, nil
	}
	for _, mime := range allowedExt {
		if mime == detected {
			return "", ErrTypeMismatch
		}
	}
	return "", ErrTypeNotSupported
}

// ExtensionFor returns the canonical lower-case extension of filename.
func ExtensionFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
