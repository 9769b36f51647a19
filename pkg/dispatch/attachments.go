package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/mailcast/pkg/mailer"
	"github.com/dmitrymomot/mailcast/pkg/namekey"
)

// Attachment is a file to attach for one recipient. Exactly one of ContentBase64 or
// Key is expected; Key refers to an object loaded through an AttachmentLoader.
type Attachment struct {
	Filename      string `json:"filename" validate:"required"`
	ContentBase64 string `json:"contentBase64,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	Key           string `json:"key,omitempty"`
}

// AttachmentIndex maps a normalized name key to that recipient's attachments.
type AttachmentIndex map[string][]Attachment

// Resolve returns the attachments for rawName. A blank name or a name without an
// entry yields an empty slice. Hits are returned as stored.
func Resolve(rawName string, index AttachmentIndex) []Attachment {
	key := namekey.Normalize(rawName)
	if key == "" {
		return []Attachment{}
	}
	if files, ok := index[key]; ok && files != nil {
		return files
	}
	return []Attachment{}
}

// Normalized returns a copy of the index re-keyed with namekey.Normalize.
// Entries whose keys collapse together are concatenated in sorted original-key order.
// Entries with an empty normalized key are dropped.
func (idx AttachmentIndex) Normalized() AttachmentIndex {
	out := make(AttachmentIndex, len(idx))
	for _, k := range slices.Sorted(maps.Keys(idx)) {
		key := namekey.Normalize(k)
		if key == "" {
			continue
		}
		out[key] = append(out[key], idx[k]...)
	}
	return out
}

// AttachmentLoader fetches attachment content by storage key.
type AttachmentLoader interface {
	Read(ctx context.Context, key string) (content []byte, contentType string, err error)
}

// materialize turns resolved attachments into mailer attachments with raw content.
func materialize(ctx context.Context, files []Attachment, loader AttachmentLoader) ([]mailer.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	out := make([]mailer.Attachment, 0, len(files))
	for _, f := range files {
		a := mailer.Attachment{Filename: f.Filename, ContentType: f.ContentType}

		switch {
		case f.ContentBase64 != "":
			content, contentType, err := decodeBase64(f.ContentBase64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAttachment, f.Filename, err)
			}
			a.Content = content
			if a.ContentType == "" {
				a.ContentType = contentType
			}
		case f.Key != "":
			if loader == nil {
				return nil, fmt.Errorf("%w: %s", ErrStorageNotConfigured, f.Filename)
			}
			content, contentType, err := loader.Read(ctx, f.Key)
			if err != nil {
				return nil, fmt.Errorf("attachment %s: %w", f.Filename, err)
			}
			a.Content = content
			if a.ContentType == "" {
				a.ContentType = contentType
			}
		default:
			return nil, fmt.Errorf("%w: %s: no content", ErrInvalidAttachment, f.Filename)
		}

		out = append(out, a)
	}
	return out, nil
}

// decodeBase64 accepts plain standard base64 or a data URL ("data:<type>;base64,<data>").
func decodeBase64(s string) ([]byte, string, error) {
	var contentType string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", errors.New("unsupported data URL")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		s = data
	}

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, "", err
	}
	return b, contentType, nil
}
