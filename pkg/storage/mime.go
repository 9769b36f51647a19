package storage

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// MIMEOctetStream is the generic binary content type.
const MIMEOctetStream = "application/octet-stream"

// resolveContentType picks the stored type when it is specific, then the key's
// extension, then sniffs the content.
func resolveContentType(stored, key string, content []byte) string {
	if ct := normalizeMIME(stored); ct != "" && ct != MIMEOctetStream && ct != "binary/octet-stream" {
		return stored
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(key))); ct != "" {
		return ct
	}
	if len(content) == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(content)
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
// Returns the lowercase MIME type.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}
