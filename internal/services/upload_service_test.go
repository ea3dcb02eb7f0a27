package services

import (
	"context"
	"strings"
	"testing"

	chat_errors "storefront-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyChain struct {
	calls int
	key   string
	url   string
	err   error
}

func (c *spyChain) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	c.calls++
	c.key = key
	if c.err != nil {
		return "", c.err
	}
	return c.url, nil
}

func TestUpload_RejectsOversizeBeforeAnyProviderCall(t *testing.T) {
	chain := &spyChain{url: "https://cdn.example.com/x"}
	svc := NewUploadService(chain, 64)

	_, err := svc.Upload(context.Background(), FileUpload{
		FileName:    "big.pdf",
		ContentType: "application/pdf",
		Body:        make([]byte, 65),
	})

	require.ErrorIs(t, err, chat_errors.ErrTooLarge)
	assert.Equal(t, 0, chain.calls, "oversize must be rejected before the chain")
}

func TestUpload_AtLimitSucceeds(t *testing.T) {
	chain := &spyChain{url: "https://cdn.example.com/x"}
	svc := NewUploadService(chain, 64)

	fd, err := svc.Upload(context.Background(), FileUpload{
		FileName:    "ok.pdf",
		ContentType: "application/pdf",
		Body:        make([]byte, 64),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(64), fd.FileSize)
	assert.Equal(t, "https://cdn.example.com/x", fd.FileURL)
}

func TestUpload_ImageGetsThumbnail(t *testing.T) {
	chain := &spyChain{url: "https://cdn.example.com/cat"}
	svc := NewUploadService(chain, 0)

	fd, err := svc.Upload(context.Background(), FileUpload{
		FileName:    "cat.png",
		ContentType: "image/png",
		Body:        []byte("png-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, fd.FileURL, fd.ThumbnailURL)
	assert.True(t, strings.HasPrefix(chain.key, "image/"))
	assert.True(t, strings.HasSuffix(chain.key, ".png"))
}

func TestUpload_DocumentHasNoThumbnail(t *testing.T) {
	chain := &spyChain{url: "https://cdn.example.com/doc"}
	svc := NewUploadService(chain, 0)

	fd, err := svc.Upload(context.Background(), FileUpload{
		FileName:    "terms.pdf",
		ContentType: "application/pdf",
		Body:        []byte("pdf-bytes"),
	})

	require.NoError(t, err)
	assert.Empty(t, fd.ThumbnailURL)
	assert.True(t, strings.HasPrefix(chain.key, "document/"))
}

func TestUpload_EmptyInputRejected(t *testing.T) {
	chain := &spyChain{url: "https://cdn.example.com/x"}
	svc := NewUploadService(chain, 0)

	_, err := svc.Upload(context.Background(), FileUpload{FileName: "", Body: []byte("x")})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)

	_, err = svc.Upload(context.Background(), FileUpload{FileName: "x.txt"})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
	assert.Equal(t, 0, chain.calls)
}

func TestUpload_ChainFailurePropagates(t *testing.T) {
	chain := &spyChain{err: chat_errors.ErrUploadFailed}
	svc := NewUploadService(chain, 0)

	_, err := svc.Upload(context.Background(), FileUpload{
		FileName:    "cat.png",
		ContentType: "image/png",
		Body:        []byte("png-bytes"),
	})
	assert.ErrorIs(t, err, chat_errors.ErrUploadFailed)
}

func TestUploadType_Namespaces(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "image"},
		{"video/mp4", "video"},
		{"audio/ogg", "audio"},
		{"application/pdf", "document"},
		{"", "document"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadType(tt.contentType), tt.contentType)
	}
}
