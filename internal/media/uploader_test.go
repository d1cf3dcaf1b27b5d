package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadStoresUnderUploads(t *testing.T) {
	put := &fakePutter{}
	u := NewUploader(put, "media", "https://cdn.kingdojo.kz/media/", 1920)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }

	data := pngBytes(t, 40, 20)
	res, err := u.Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(res.Key, "_1700000000000.png"))
	assert.Equal(t, "https://cdn.kingdojo.kz/media/"+res.Key, res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, "media", *put.input.Bucket)
	assert.Equal(t, data, put.body, "small images are stored untouched")
}

func TestUploadDownscalesWideImages(t *testing.T) {
	put := &fakePutter{}
	u := NewUploader(put, "media", "https://cdn.kingdojo.kz/media", 100)

	res, err := u.Upload(context.Background(), bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)

	stored, err := png.Decode(bytes.NewReader(put.body))
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Bounds().Dx())
}

func TestUploadRejectsNonImages(t *testing.T) {
	u := NewUploader(&fakePutter{}, "media", "", 100)
	_, err := u.Upload(context.Background(), strings.NewReader("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadPropagatesStorageErrors(t *testing.T) {
	u := NewUploader(&fakePutter{err: errors.New("bucket missing")}, "media", "", 0)
	_, err := u.Upload(context.Background(), bytes.NewReader(pngBytes(t, 4, 4)))
	assert.ErrorContains(t, err, "bucket missing")
}
