package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/matzehuels/kintree/pkg/errors"
)

// MaxUploadSize bounds avatar uploads.
const MaxUploadSize = 10 << 20

// Upload is one avatar image.
type Upload struct {
	// PersonID is sent as personId when set.
	PersonID string
	Filename string
	Content  io.Reader
	// Cropped sends the file as croppedImage instead of image.
	Cropped bool
}

// Image is the stored upload.
type Image struct {
	URL  string         `json:"url"`
	Data map[string]any `json:"data"`
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// urlFields are the response keys that may carry the stored image URL, in
// order of preference.
var urlFields = []string{"url", "imageUrl", "secure_url", "location", "path"}

// UploadImage stores an avatar and returns its URL.
func (c *Client) UploadImage(ctx context.Context, up Upload) (img Image, err error) {
	done := track(ctx, "upload", up.PersonID)
	defer func() {
		n := 0
		if img.URL != "" {
			n = 1
		}
		done(n, err)
	}()

	content, err := io.ReadAll(io.LimitReader(up.Content, MaxUploadSize+1))
	if err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image")
	}
	if len(content) == 0 {
		return Image{}, errors.New(errors.ErrCodeInvalidInput, "image is empty")
	}
	if len(content) > MaxUploadSize {
		return Image{}, errors.New(errors.ErrCodeInvalidInput, "image exceeds %d bytes", MaxUploadSize)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	field := "image"
	if up.Cropped {
		field = "croppedImage"
	}
	name := filepath.Base(up.Filename)
	if name == "." || name == "/" {
		name = "avatar.png"
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeInternal, err, "build upload")
	}
	if _, err := part.Write(content); err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeInternal, err, "build upload")
	}
	if up.PersonID != "" {
		if err := w.WriteField("personId", up.PersonID); err != nil {
			return Image{}, errors.Wrap(errors.ErrCodeInternal, err, "build upload")
		}
	}
	if err := w.Close(); err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeInternal, err, "build upload")
	}

	var resp uploadResponse
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/images/upload",
		raw:         buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, &resp); err != nil {
		return Image{}, err
	}
	if !resp.Success {
		return Image{}, errors.New(errors.ErrCodeNetworkFetch, "upload rejected: %s", resp.Message)
	}
	for _, k := range urlFields {
		if s, ok := resp.Data[k].(string); ok && s != "" {
			return Image{URL: s, Data: resp.Data}, nil
		}
	}
	return Image{}, errors.New(errors.ErrCodeInvalidFormat, "upload response carries no image URL")
}
