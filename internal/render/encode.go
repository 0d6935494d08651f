package render

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ThumbnailWidth is the width of gallery snapshots.
const ThumbnailWidth = 320

// JPEG encodes img. The returned slice is owned by the caller.
func JPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Thumbnail scales a JPEG down to width, keeping the aspect ratio, and
// re-encodes it. Images already narrower than width are only re-encoded.
func Thumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return encodeThumbnail(img, width)
}

// ThumbnailMat is Thumbnail for a frame that is still a Mat.
func ThumbnailMat(img gocv.Mat, width int) ([]byte, error) {
	src, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return encodeThumbnail(src, width)
}

func encodeThumbnail(img image.Image, width int) ([]byte, error) {
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
