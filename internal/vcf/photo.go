package vcf

import (
	"bytes"
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultPhotoMaxBytes caps the size of a photo read by FileImageLoader.
const DefaultPhotoMaxBytes = 5 << 20

// jpegQuality is used when a PNG or GIF photo is transcoded.
const jpegQuality = 90

const mediaTypeJPEG = "image/jpeg"

var (
	// ErrUnsupportedImage is returned for photos that are not JPEG, PNG or GIF.
	ErrUnsupportedImage = stderrors.New("unsupported image format")

	// ErrImageTooLarge is returned for photos above the loader's size limit.
	ErrImageTooLarge = stderrors.New("image too large")
)

// ImageLoader resolves a thumbnail reference to JPEG bytes.
// Implementations must be safe for concurrent use.
type ImageLoader interface {
	LoadImage(ctx context.Context, ref string) ([]byte, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, ref string) ([]byte, error)

// LoadImage calls f.
func (f ImageLoaderFunc) LoadImage(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}

// FileImageLoader loads photos from the local filesystem or inline data URIs.
//
// References may be absolute paths, paths relative to BaseDir, file:// URIs
// or data: URIs. PNG and GIF images are transcoded to JPEG.
type FileImageLoader struct {
	BaseDir  string
	MaxBytes int64
}

// LoadImage implements ImageLoader.
func (l *FileImageLoader) LoadImage(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty image reference")
	}

	var data []byte
	var err error
	if strings.HasPrefix(ref, "data:") {
		data, err = decodeDataURI(ref)
	} else {
		var path string
		path, err = l.resolvePath(ref)
		if err == nil {
			data, err = l.readFile(path)
		}
	}
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > l.maxBytes() {
		return nil, ErrImageTooLarge
	}
	return toJPEG(data)
}

func (l *FileImageLoader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return DefaultPhotoMaxBytes
}

// resolvePath turns a reference into a filesystem path.
func (l *FileImageLoader) resolvePath(ref string) (string, error) {
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("unsupported image reference scheme %q", u.Scheme)
		}
		ref = filepath.FromSlash(u.Path)
	}
	if !filepath.IsAbs(ref) && l.BaseDir != "" {
		ref = filepath.Join(l.BaseDir, ref)
	}
	return filepath.Clean(ref), nil
}

func (l *FileImageLoader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read one byte past the limit so oversized files are detected.
	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes()+1))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI: %w", err)
		}
		return data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return []byte(decoded), nil
}

// toJPEG returns JPEG data unchanged and transcodes PNG or GIF data.
func toJPEG(data []byte) ([]byte, error) {
	mt := mimetype.Detect(data)

	var img image.Image
	var err error
	switch {
	case mt.Is(mediaTypeJPEG):
		return data, nil
	case mt.Is("image/png"):
		img, err = png.Decode(bytes.NewReader(data))
	case mt.Is("image/gif"):
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", mt.String(), err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// photoField embeds JPEG bytes as a vCard 4.0 data URI.
func photoField(data []byte) *vcard.Field {
	return &vcard.Field{
		Value: "data:" + mediaTypeJPEG + ";base64," + base64.StdEncoding.EncodeToString(data),
		Params: vcard.Params{
			"MEDIATYPE": {mediaTypeJPEG},
		},
	}
}
