package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

func TestImageExtension(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/PNG":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	for ct, want := range cases {
		ext, err := ImageExtension(ct)
		assert.NoError(t, err, ct)
		assert.Equal(t, want, ext)
	}

	_, err := ImageExtension("application/pdf")
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))
}

func TestUnconfiguredStore(t *testing.T) {
	var s *ImageStore
	ctx := context.Background()

	_, err := s.Upload(ctx, "image/png", strings.NewReader("x"))
	assert.True(t, global.IsKind(err, global.KindUpstream))
	assert.Contains(t, err.Error(), "object storage is not configured")

	err = s.Delete(ctx, "products/a.png")
	assert.True(t, global.IsKind(err, global.KindUpstream))

	// type checks run before the configuration check
	_, err = s.Upload(ctx, "text/plain", strings.NewReader("x"))
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))
}

func TestObjectFromURL(t *testing.T) {
	s := NewImageStore(nil, "shop-images")

	url := s.PublicURL("products/abc.png")
	assert.Equal(t, "https://storage.googleapis.com/shop-images/products/abc.png", url)

	obj, ok := s.ObjectFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "products/abc.png", obj)

	_, ok = s.ObjectFromURL("https://example.com/img.png")
	assert.False(t, ok)
}
