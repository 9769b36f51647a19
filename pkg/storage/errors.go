package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig  = errors.New("storage: invalid configuration")
	ErrInvalidKey     = errors.New("storage: invalid key")
	ErrNotFound       = errors.New("storage: attachment not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrDownloadFailed = errors.New("storage: download failed")
	ErrFileTooLarge   = errors.New("storage: attachment exceeds size limit")
)

// s3ErrorCodes maps S3 API error codes to the sentinel callers match on.
var s3ErrorCodes = map[string]error{
	"NoSuchKey":             ErrNotFound,
	"NotFound":              ErrNotFound,
	"NoSuchBucket":          ErrNotFound,
	"AccessDenied":          ErrAccessDenied,
	"Forbidden":             ErrAccessDenied,
	"InvalidAccessKeyId":    ErrAccessDenied,
	"SignatureDoesNotMatch": ErrAccessDenied,
}

// classify maps an S3 error onto a sentinel, falling back to fallback.
// The S3 error is kept in the message only.
func classify(err, fallback error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := s3ErrorCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
