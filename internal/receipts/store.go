// Package receipts stores proof-of-payment images submitted at checkout
package receipts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = config.NewLogger()

const (
	// MaxDimension bounds the longer side of a stored receipt
	MaxDimension = 1600
	jpegQuality  = 80
	// MaxUploadBytes rejects uploads before decoding
	MaxUploadBytes = 10 << 20
	// MaxPixels bounds the decoded size of an upload, whatever its compressed size
	MaxPixels = 40_000_000
)

// Store normalises receipt images to JPEG and writes them under Dir
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save decodes an image, either raw bytes or a base64 data URL, and stores it.
// It returns the opaque reference kept on the order.
func (s *Store) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := unwrapDataURL(data)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: receipt image is empty", models.ErrValidation)
	}
	if len(raw) > MaxUploadBytes {
		return "", fmt.Errorf("%w: receipt image exceeds %d bytes", models.ErrValidation, MaxUploadBytes)
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: receipt is not a readable image", models.ErrValidation)
	}
	if header.Width <= 0 || header.Height <= 0 || int64(header.Width)*int64(header.Height) > MaxPixels {
		return "", fmt.Errorf("%w: receipt image of %dx%d pixels is too large", models.ErrValidation, header.Width, header.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: receipt is not a readable image", models.ErrValidation)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	ref := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(s.Dir, ref), imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	log.WithFields(logrus.Fields{
		"ref":    ref,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Receipt stored")
	return ref, nil
}

// Path resolves a reference returned by Save. References that escape the
// store directory are rejected.
func (s *Store) Path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) {
		return "", fmt.Errorf("%w: receipt %q", models.ErrRecordNotFound, ref)
	}
	path := filepath.Join(s.Dir, ref)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: receipt %q", models.ErrRecordNotFound, ref)
	}
	return path, nil
}

// Remove deletes a stored receipt. Unknown references are ignored.
func (s *Store) Remove(ref string) error {
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove receipt: %w", err)
	}
	return nil
}

// unwrapDataURL accepts "data:image/png;base64,...." as well as raw bytes
func unwrapDataURL(data []byte) ([]byte, error) {
	text := string(bytes.TrimSpace(data))
	if !strings.HasPrefix(text, "data:") {
		return data, nil
	}
	comma := strings.IndexByte(text, ',')
	if comma < 0 || !strings.HasSuffix(text[:comma], ";base64") {
		return nil, fmt.Errorf("%w: receipt data URL must be base64 encoded", models.ErrValidation)
	}
	decoded, err := base64.StdEncoding.DecodeString(text[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: receipt data URL is not valid base64", models.ErrValidation)
	}
	return decoded, nil
}
