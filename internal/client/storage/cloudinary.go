package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

// DefaultCloudinaryURL is the public API host of the image storage provider.
const DefaultCloudinaryURL = "https://api.cloudinary.com"

// CloudinaryUploader sends unsigned uploads to a Cloudinary-compatible
// image upload endpoint.
type CloudinaryUploader struct {
	client       *http.Client
	baseURL      string
	cloudName    string
	uploadPreset string
	log          *zap.Logger
}

// NewCloudinaryUploader creates an uploader for the given storage account and
// upload preset. An empty baseURL selects DefaultCloudinaryURL; a nil logger
// disables logging.
func NewCloudinaryUploader(client *http.Client, baseURL, cloudName, uploadPreset string, log *zap.Logger) *CloudinaryUploader {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultCloudinaryURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CloudinaryUploader{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		log:          log,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Upload posts the image as a multipart form and returns the secure URL from
// the response. A successful response without a secure URL yields ("", nil).
// Transport failures, non-2xx responses and malformed bodies are errors.
func (u *CloudinaryUploader) Upload(ctx context.Context, file models.ImageFile, progress ProgressFunc) (string, error) {
	body, contentType, err := u.encodeForm(file)
	if err != nil {
		return "", fmt.Errorf("encode upload form: %w", err)
	}

	total := int64(body.Len())
	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", u.baseURL, url.PathEscape(u.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, newProgressReader(body, total, progress))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("server error: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}

	u.log.Debug("image uploaded",
		zap.String("name", file.Name),
		zap.Int64("size", file.Size),
		zap.String("public_id", out.PublicID),
	)
	return out.SecureURL, nil
}

func (u *CloudinaryUploader) encodeForm(file models.ImageFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName(file)))
	if file.ContentType != "" {
		h.Set("Content-Type", file.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("upload_preset", u.uploadPreset); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func fileName(file models.ImageFile) string {
	if file.Name == "" {
		return "image"
	}
	return file.Name
}
