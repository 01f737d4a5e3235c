package vision

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxImageBytes caps decoded uploads.
const MaxImageBytes = 10 << 20

var ErrInvalidImage = errors.New("invalid image payload")

type Image struct {
	Data     []byte
	MIMEType string
}

// DecodeImage accepts a data URI ("data:image/png;base64,...") or bare base64.
func DecodeImage(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	declared := ""
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return Image{}, fmt.Errorf("%w: data uri must be base64", ErrInvalidImage)
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	return NewImage(data, declared)
}

// NewImage validates raw bytes. The declared type is used only when sniffing
// cannot identify the image.
func NewImage(data []byte, declared string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidImage, len(data), MaxImageBytes)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		if !strings.HasPrefix(declared, "image/") {
			return Image{}, fmt.Errorf("%w: content type %q", ErrInvalidImage, mime)
		}
		mime = declared
	}
	return Image{Data: data, MIMEType: mime}, nil
}

// DataURI renders the image back to the data URI form.
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
