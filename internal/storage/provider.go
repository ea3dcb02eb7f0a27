package storage

import (
	"context"
	"fmt"

	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"
)

// Provider is one blob-storage backend of the fallback chain. Upload
// places the object; CreateLink resolves a publicly dereferenceable URL
// for it, which may be a separate call with its own internal fallbacks.
type Provider interface {
	Name() string
	Upload(ctx context.Context, key, contentType string, body []byte) error
	CreateLink(ctx context.Context, key string) (string, error)
}

// Chain tries providers in order; the first one to both upload and
// resolve a link wins. Adding or removing a provider is a data change.
type Chain struct {
	providers []Provider
	log       *logger.Logger
}

func NewChain(log *logger.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// Put uploads the object through the chain and returns the winning URL.
// All providers failing is a terminal ErrUploadFailed.
func (c *Chain) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if len(c.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", chat_errors.ErrUploadFailed)
	}

	var lastErr error
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := p.Upload(ctx, key, contentType, body); err != nil {
			c.log.Warnf("provider %s upload of %s failed: %v", p.Name(), key, err)
			lastErr = err
			continue
		}
		url, err := p.CreateLink(ctx, key)
		if err != nil {
			c.log.Warnf("provider %s link for %s failed: %v", p.Name(), key, err)
			lastErr = err
			continue
		}
		return url, nil
	}

	return "", fmt.Errorf("%w: all %d providers exhausted: %v", chat_errors.ErrUploadFailed, len(c.providers), lastErr)
}
