package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct{ code string }

func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return "s3 said no" }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *apiError) Error() string                 { return e.code + ": s3 said no" }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want error
		name string
	}{
		{name: "no such key", err: &apiError{code: "NoSuchKey"}, want: ErrNotFound},
		{name: "head not found", err: &apiError{code: "NotFound"}, want: ErrNotFound},
		{name: "no such bucket", err: &apiError{code: "NoSuchBucket"}, want: ErrNotFound},
		{name: "typed no such key", err: fmt.Errorf("get object: %w", &types.NoSuchKey{}), want: ErrNotFound},
		{name: "access denied", err: &apiError{code: "AccessDenied"}, want: ErrAccessDenied},
		{name: "bad credentials", err: &apiError{code: "InvalidAccessKeyId"}, want: ErrAccessDenied},
		{name: "unknown code", err: &apiError{code: "SlowDown"}, want: ErrDownloadFailed},
		{name: "network error", err: errors.New("dial tcp: i/o timeout"), want: ErrDownloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classify(tt.err, ErrDownloadFailed)
			require.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
			assert.NotErrorIs(t, got, tt.err)
		})
	}
}
