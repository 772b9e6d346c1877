package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Photos of supporting documents above this size are recompressed.
const (
	maxImageSize    = 400 * 1024
	targetImageSize = 250 * 1024
	minImageWidth   = 1000
)

type FileService interface {
	// UploadWfhAttachment stores a supporting document for a WFH request and returns its key
	UploadWfhAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// Generic operations
	OpenFile(ctx context.Context, path string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadWfhAttachment uploads a WFH request attachment.
// JPEG and PNG photos are recompressed to JPEG when larger than maxImageSize.
func (s *fileServiceImpl) UploadWfhAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := "application/octet-stream"

	switch ext {
	case ".pdf":
		contentType = "application/pdf"
	case ".jpg", ".jpeg", ".png":
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read attachment: %w", err)
		}
		contentType = "image/jpeg"
		if ext == ".png" {
			contentType = "image/png"
		}
		if len(buffer) > maxImageSize {
			compressed, err := compressImage(buffer, maxImageSize, targetImageSize)
			if err != nil {
				return "", fmt.Errorf("failed to compress attachment: %w", err)
			}
			buffer, ext, contentType = compressed, ".jpg", "image/jpeg"
		}
		file = bytes.NewReader(buffer)
	default:
		return "", fmt.Errorf("invalid file type: only pdf, jpg, jpeg, png allowed")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	key := path.Join("wfh", employeeID, id.String()+ext)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload wfh attachment: %w", err)
	}

	slog.Debug("wfh attachment stored", "employee_id", employeeID, "path", uploadedPath, "content_type", contentType)
	return uploadedPath, nil
}

// OpenFile opens a stored file for streaming
func (s *fileServiceImpl) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, path)
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG with falling quality until it fits
// maxSize, then downscales towards targetSize if quality alone is not enough.
func compressImage(buffer []byte, maxSize int, targetSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	bounds := img.Bounds()
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	width := int(float64(bounds.Dx()) * ratio)
	height := int(float64(bounds.Dy()) * ratio)
	// Keep documents legible
	if width < minImageWidth && bounds.Dx() > minImageWidth {
		width = minImageWidth
		height = bounds.Dy() * minImageWidth / bounds.Dx()
	}
	if width <= 0 || height <= 0 || width >= bounds.Dx() {
		return compressed, nil
	}

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
