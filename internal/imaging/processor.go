// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes promotional images for mega-menu items: it
// normalizes uploads (EXIF orientation, re-encoding) and produces the
// sized variants the site renders.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// VariantConfig describes one sized variant of a promo image.
type VariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// Variants are the sizes generated for every uploaded promo image. "menu"
// is what the mega menu renders; "thumb" is for the console's picker.
var Variants = map[string]VariantConfig{
	"menu":  {Width: 480, Height: 360, Quality: 85, Crop: false},
	"thumb": {Width: 160, Height: 120, Quality: 80, Crop: true},
}

// ProcessResult contains the outcome of processing an uploaded image.
type ProcessResult struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	FilePath string
	Variants map[string]string // variant name -> file path
}

// Processor handles image processing using pure Go libraries.
type Processor struct {
	uploadDir string
}

// NewProcessor creates an image processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessPromo normalizes an uploaded promo image, saves the original and
// generates all variants. id namespaces the files on disk.
func (p *Processor) ProcessPromo(reader io.Reader, id, filename string) (*ProcessResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Auto-rotate per EXIF; pure Go encoders drop the metadata afterwards.
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	processed, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	filePath, err := p.saveImageFile(filepath.Join("originals", id), filename, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}

	result := &ProcessResult{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(processed)),
		FilePath: filePath,
		Variants: make(map[string]string),
	}

	for name, cfg := range Variants {
		variantPath, err := p.createVariant(img, id, filename, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s variant: %w", name, err)
		}
		if variantPath != "" {
			result.Variants[name] = variantPath
		}
	}

	return result, nil
}

// createVariant resizes and saves one variant. Returns an empty path when
// the source is already smaller than the target and no crop is requested.
func (p *Processor) createVariant(img image.Image, id, filename, name string, cfg VariantConfig) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= cfg.Width && bounds.Dy() <= cfg.Height && !cfg.Crop {
		return "", nil
	}

	var resized image.Image
	if cfg.Crop {
		resized = imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
	} else {
		resized = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	}

	processed, err := encodeImage(resized, detectFormatFromFilename(filename), cfg.Quality)
	if err != nil {
		return "", err
	}

	return p.saveImageFile(filepath.Join(name, id), filename, processed)
}

// IsImage checks if a MIME type represents an image we can process.
func (p *Processor) IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// DetectMimeType detects the MIME type of image data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// DeleteImage removes the original and all variants for an uploaded image.
func (p *Processor) DeleteImage(id string) error {
	dirs := []string{filepath.Join(p.uploadDir, "originals", id)}
	for name := range Variants {
		dirs = append(dirs, filepath.Join(p.uploadDir, name, id))
	}

	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}
	return nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		// WebP encoding is not available in pure Go; JPEG is the fallback.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// detectFormatFromFilename extracts format from filename extension.
func detectFormatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	default:
		return "jpeg"
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

// saveImageFile creates the directory if needed and saves image data.
// The filename is sanitized and the target is validated to stay within
// uploadDir.
func (p *Processor) saveImageFile(subDir, filename string, data []byte) (string, error) {
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.Contains(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subdirectory path")
	}

	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	absTarget := filepath.Join(absBase, cleanSubDir)

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(absTarget, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(absTarget, safeFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filePath, nil
}
