package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder

	"kingdojo/internal/security"
)

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, GIF or WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Upload describes a stored image.
type Upload struct {
	Key         string
	URL         string
	ContentType string
	Width       int
	Height      int
	Size        int64
}

// Uploader stores admin images in object storage under uploads/.
type Uploader struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
	maxWidth      int
	now           func() time.Time
}

func NewUploader(client ObjectPutter, bucket, publicBaseURL string, maxWidth int) *Uploader {
	return &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxWidth:      maxWidth,
		now:           time.Now,
	}
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload validates, optionally downscales, and stores the image.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (Upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return Upload{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Upload{}, fmt.Errorf("decode image: %w", err)
	}
	if u.maxWidth > 0 && img.Bounds().Dx() > u.maxWidth {
		data, contentType, img, err = u.downscale(img, contentType)
		if err != nil {
			return Upload{}, err
		}
	}

	name, err := security.RandomName(13)
	if err != nil {
		return Upload{}, err
	}
	key := fmt.Sprintf("uploads/%s_%d.%s", name, u.now().UnixMilli(), extensions[contentType])

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return Upload{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Upload{
		Key:         key,
		URL:         u.publicBaseURL + "/" + key,
		ContentType: contentType,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		Size:        int64(len(data)),
	}, nil
}

// downscale resizes to maxWidth. WebP has no encoder here and is re-encoded as JPEG.
func (u *Uploader) downscale(img image.Image, contentType string) ([]byte, string, image.Image, error) {
	resized := imaging.Resize(img, u.maxWidth, 0, imaging.Lanczos)
	format := imaging.JPEG
	switch contentType {
	case "image/png":
		format = imaging.PNG
	case "image/gif":
		format = imaging.GIF
	default:
		contentType = "image/jpeg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), contentType, resized, nil
}
