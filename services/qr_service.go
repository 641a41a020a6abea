package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"

	"stockroom-backend/metrics"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// QRImageWidth is the width every stored QR image is normalized to
const QRImageWidth = 400

// ObjectStore persists public blobs and returns the URL they are served from
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type QRService struct {
	store    ObjectStore
	products *ProductService
	log      *zap.Logger
}

// NewQRService accepts a nil store; uploads then fail with ErrStorageDisabled
func NewQRService(store ObjectStore, products *ProductService, log *zap.Logger) *QRService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QRService{store: store, products: products, log: log}
}

// QRObjectKey is the storage key of a product's QR image
func QRObjectKey(storeID, sku string) string {
	return path.Join(storeID, sku+".png")
}

// Upload normalizes an image to a 400 px wide PNG and stores it at <store>/<sku>.png.
// An existing product with that SKU gets the new URL.
func (s *QRService) Upload(ctx context.Context, actor Actor, sku string, r io.Reader) (string, error) {
	if err := ValidateSKU(sku); err != nil {
		return "", err
	}
	if err := Authorize(actor, PermUploadQR); err != nil {
		return "", err
	}
	// no bucket configured
	if s.store == nil {
		return "", ErrStorageDisabled
	}

	// decode, resize, re-encode as PNG
	data, err := normalizeQRImage(r)
	if err != nil {
		metrics.RecordQRUpload("rejected")
		return "", err
	}

	url, err := s.store.Put(ctx, QRObjectKey(actor.StoreID, sku), "image/png", data)
	if err != nil {
		metrics.RecordQRUpload("failed")
		return "", fmt.Errorf("store qr image: %w", err)
	}
	metrics.RecordQRUpload("stored")

	// attach the URL to an existing product, if any
	if s.products != nil {
		if err := s.products.SetQRURL(ctx, actor, sku, url); err != nil {
			s.log.Warn("qr url not attached to product", zap.String("sku", sku), zap.Error(err))
		}
	}
	return url, nil
}

func normalizeQRImage(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	var out image.Image = img
	if img.Bounds().Dx() != QRImageWidth {
		// nearest neighbour keeps QR modules crisp
		out = imaging.Resize(img, QRImageWidth, 0, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
