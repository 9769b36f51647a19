package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(params.Bucket), aws.ToString(params.Key))
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, aws.ToString(params.Bucket))
	out, _ := args.Get(0).(*s3.HeadBucketOutput)
	return out, args.Error(1)
}

func newTestStorage(client s3API, cfg Config) *S3Storage {
	if cfg.Bucket == "" {
		cfg.Bucket = "attachments"
	}
	cfg.applyDefaults()
	return &S3Storage{client: client, cfg: cfg}
}

func object(body, contentType string) *s3.GetObjectOutput {
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		out.ContentType = aws.String(contentType)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		require.NotNil(t, store.client)
		require.Equal(t, DefaultRegion, store.cfg.Region)
		require.Equal(t, int64(DefaultMaxObjectSize), store.cfg.MaxObjectSize)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{Bucket: "only-bucket"})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})
}

func TestConfig_ObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
		err    error
	}{
		{name: "plain", key: "tickets/ana.pdf", want: "tickets/ana.pdf"},
		{name: "leading slash", key: "/tickets/ana.pdf", want: "tickets/ana.pdf"},
		{name: "with prefix", prefix: "/events/2026/", key: "ana.pdf", want: "events/2026/ana.pdf"},
		{name: "empty", key: "  ", err: ErrInvalidKey},
		{name: "traversal", prefix: "events", key: "../secrets.txt", err: ErrInvalidKey},
		{name: "inner traversal", key: "a/../../b", err: ErrInvalidKey},
		{name: "dots in name are fine", key: "a..b.pdf", want: "a..b.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Prefix: tt.prefix}
			cfg.applyDefaults()
			got, err := cfg.objectKey(tt.key)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3Storage_Read(t *testing.T) {
	t.Parallel()

	t.Run("uses stored content type", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "events/ticket.bin").
			Return(object("%PDF-1.4", "application/pdf"), nil).Once()

		store := newTestStorage(client, Config{Prefix: "events"})
		content, ct, err := store.Read(context.Background(), "ticket.bin")
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(content))
		assert.Equal(t, "application/pdf", ct)
		client.AssertExpectations(t)
	})

	t.Run("falls back to extension", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "ticket.pdf").
			Return(object("%PDF-1.4", "binary/octet-stream"), nil).Once()

		store := newTestStorage(client, Config{})
		_, ct, err := store.Read(context.Background(), "ticket.pdf")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", ct)
	})

	t.Run("sniffs content", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "noext").
			Return(object("\x89PNG\r\n\x1a\n0000", ""), nil).Once()

		store := newTestStorage(client, Config{})
		_, ct, err := store.Read(context.Background(), "noext")
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)
	})

	t.Run("declared size over limit", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "big.pdf").
			Return(object("0123456789", "application/pdf"), nil).Once()

		store := newTestStorage(client, Config{MaxObjectSize: 5})
		_, _, err := store.Read(context.Background(), "big.pdf")
		require.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("undeclared size over limit", func(t *testing.T) {
		t.Parallel()

		out := object("0123456789", "application/pdf")
		out.ContentLength = nil

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "big.pdf").Return(out, nil).Once()

		store := newTestStorage(client, Config{MaxObjectSize: 5})
		_, _, err := store.Read(context.Background(), "big.pdf")
		require.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		client.On("GetObject", mock.Anything, "attachments", "missing.pdf").
			Return(nil, &types.NoSuchKey{}).Once()

		store := newTestStorage(client, Config{})
		_, _, err := store.Read(context.Background(), "missing.pdf")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid key never reaches s3", func(t *testing.T) {
		t.Parallel()

		client := &mockS3{}
		store := newTestStorage(client, Config{})
		_, _, err := store.Read(context.Background(), "../etc/passwd")
		require.ErrorIs(t, err, ErrInvalidKey)
		client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestS3Storage_Get(t *testing.T) {
	t.Parallel()

	client := &mockS3{}
	client.On("GetObject", mock.Anything, "attachments", "a.txt").Return(object("hello", "text/plain"), nil).Once()

	store := newTestStorage(client, Config{})
	rc, err := store.Get(context.Background(), "a.txt")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestS3Storage_Healthcheck(t *testing.T) {
	t.Parallel()

	client := &mockS3{}
	client.On("HeadBucket", mock.Anything, "attachments").Return(&s3.HeadBucketOutput{}, nil).Once()
	store := newTestStorage(client, Config{})
	require.NoError(t, store.Healthcheck(context.Background()))

	failing := &mockS3{}
	failing.On("HeadBucket", mock.Anything, "attachments").Return(nil, errors.New("dial tcp: refused")).Once()
	store = newTestStorage(failing, Config{})
	require.ErrorIs(t, store.Healthcheck(context.Background()), ErrDownloadFailed)
}
