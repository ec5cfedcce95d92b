// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes project photos before they are forwarded to the
// remote API: orientation is baked in, oversized images are scaled down and
// metadata is dropped by re-encoding.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/taskdesk/internal/apiclient"
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// JPEGQuality is used for every JPEG the processor writes.
const JPEGQuality = 85

// ErrUnsupportedFormat is returned for anything that is not JPEG, PNG, GIF or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Processor normalizes uploaded images.
type Processor struct {
	maxDimension int
}

// NewProcessor creates a processor that fits images into a maxDimension square.
// A non-positive maxDimension disables downscaling.
func NewProcessor(maxDimension int) *Processor {
	return &Processor{maxDimension: maxDimension}
}

// Normalize decodes data, applies EXIF orientation, downsizes it to the
// processor's bound and re-encodes it. WebP input is written as JPEG.
func (p *Processor) Normalize(data []byte, filename string) (apiclient.File, error) {
	format := detectFormat(data)
	if format == "" {
		return apiclient.File{}, fmt.Errorf("%s: %w", filepath.Base(filename), ErrUnsupportedFormat)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return apiclient.File{}, fmt.Errorf("decoding %s: %w", filepath.Base(filename), err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if p.maxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
			img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		}
	}

	if format == "webp" {
		format = "jpeg"
	}

	out, err := encodeImage(img, format)
	if err != nil {
		return apiclient.File{}, fmt.Errorf("encoding %s: %w", filepath.Base(filename), err)
	}

	return apiclient.File{
		Name:        outputName(filename, format),
		ContentType: formatToMimeType(format),
		Data:        out,
	}, nil
}

// NormalizeReader is Normalize for a stream, reading at most limit bytes.
func (p *Processor) NormalizeReader(r io.Reader, filename string, limit int64) (apiclient.File, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return apiclient.File{}, fmt.Errorf("reading %s: %w", filepath.Base(filename), err)
	}
	if int64(len(data)) > limit {
		return apiclient.File{}, fmt.Errorf("%s exceeds %d bytes", filepath.Base(filename), limit)
	}
	return p.Normalize(data, filename)
}

// IsImage reports whether mimeType is one of the accepted upload types.
func IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// readExifOrientation returns 1 (normal) when no orientation tag can be read.
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

// applyOrientation maps the EXIF orientation values 2..8 onto flips and
// rotations. Anything else leaves the image untouched.
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

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs data. TIFF is refused outright (CVE-2023-36308 in
// disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
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

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	default:
		return MimeTypeJPEG
	}
}

// outputName strips any directory part and sets the extension to match format.
func outputName(filename, format string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}

	ext := ".jpg"
	switch format {
	case "png":
		ext = ".png"
	case "gif":
		ext = ".gif"
	}
	return stem + ext
}
