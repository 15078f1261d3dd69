package marketplace

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
)

const (
	MaxImageBytes = 5 << 20
	signedURLTTL  = 15 * time.Minute
	sniffLen      = 512
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ObjectStorage interface {
	PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Image struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadImage stores a listing photo before the listing itself exists; the
// returned key is then referenced by CreateItem.
func (s *Service) UploadImage(ctx context.Context, actor model.Actor, fileName, contentType string, body io.Reader, size int64) (Image, error) {
	if !actor.Authenticated() {
		return Image{}, moderation.ErrUnauthenticated
	}
	if s.storage == nil {
		return Image{}, fmt.Errorf("image storage is not configured")
	}

	var checker validate.Checker
	if body == nil || size <= 0 {
		checker.Add("file", "required", "is required")
	} else if size > MaxImageBytes {
		checker.Add("file", "too_large", "must be at most 5 MiB")
	}
	if err := checker.Err(); err != nil {
		return Image{}, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Image{}, fmt.Errorf("read image header: %w", err)
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	declared := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := imageExtensions[detected]
	if !ok || (declared != "" && declared != detected) {
		return Image{}, validate.Errors{{Field: "file", Code: "invalid_type", Message: "must be a JPEG, PNG or WebP image"}}
	}

	key, err := buildImageKey(actor, ext)
	if err != nil {
		return Image{}, fmt.Errorf("build object key: %w", err)
	}

	reader := io.MultiReader(bytes.NewReader(head), body)
	if err := s.storage.PutImage(ctx, key, reader, size, detected); err != nil {
		return Image{}, fmt.Errorf("put image: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return Image{}, fmt.Errorf("presign image url: %w", err)
	}

	s.logger.Info("listing image uploaded",
		zap.String("key", key),
		zap.String("file_name", fileName),
		zap.Int64("size", size),
	)
	return Image{Key: key, URL: url}, nil
}

// ImageURLs presigns the stored keys of an item for display.
func (s *Service) ImageURLs(ctx context.Context, item model.MarketplaceItem) ([]string, error) {
	if s.storage == nil || len(item.ImageKeys) == 0 {
		return []string{}, nil
	}

	urls := make([]string, 0, len(item.ImageKeys))
	for _, key := range item.ImageKeys {
		url, err := s.storage.PresignGet(ctx, key, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign image url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func imagePrefix(tenantID, userID uuid.UUID) string {
	return "tenants/" + tenantID.String() + "/marketplace/" + userID.String() + "/"
}

func buildImageKey(actor model.Actor, ext string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return imagePrefix(actor.TenantID, actor.UserID) + stamp + "_" + hex.EncodeToString(rnd) + ext, nil
}
