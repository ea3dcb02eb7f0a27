package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"storefront-chat/internal/domain/message"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/google/uuid"
)

// BlobChain is the provider fallback chain the pipeline uploads through.
type BlobChain interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// UploadService is the attachment pipeline: size validation up front, a
// type-namespaced object key, the provider chain, then the FileData
// descriptor the message log stores.
type UploadService struct {
	chain    BlobChain
	maxBytes int64
}

func NewUploadService(chain BlobChain, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &UploadService{chain: chain, maxBytes: maxBytes}
}

func (s *UploadService) Upload(ctx context.Context, in FileUpload) (message.FileData, error) {
	if in.FileName == "" || len(in.Body) == 0 {
		return message.FileData{}, chat_errors.ErrInvalidInput
	}
	// One authoritative limit, checked before any network call.
	if int64(len(in.Body)) > s.maxBytes {
		return message.FileData{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", chat_errors.ErrTooLarge, len(in.Body), s.maxBytes)
	}

	key := objectKey(in.FileName, in.ContentType)
	url, err := s.chain.Put(ctx, key, in.ContentType, in.Body)
	if err != nil {
		return message.FileData{}, err
	}

	fileData := message.FileData{
		FileName: in.FileName,
		FileSize: int64(len(in.Body)),
		FileType: in.ContentType,
		FileURL:  url,
	}
	// Images reuse the full-size URL as thumbnail; there is no resize step.
	if strings.HasPrefix(in.ContentType, "image/") {
		fileData.ThumbnailURL = url
	}
	return fileData, nil
}

// objectKey namespaces objects by upload type so providers can apply
// per-type policies.
func objectKey(fileName, contentType string) string {
	return fmt.Sprintf("%s/%s%s", uploadType(contentType), uuid.New(), path.Ext(fileName))
}

func uploadType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	default:
		return "document"
	}
}
