// Package media uploads product images to the image hosting provider.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const uploadSegment = "/upload/"

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// rejectedError is a 4xx answer from the provider. It does not count against the circuit breaker.
type rejectedError struct {
	status  int
	message string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("upload rejected with status %d: %s", e.status, e.message)
}

// CloudinaryUploader performs unsigned uploads with an upload preset.
type CloudinaryUploader struct {
	client *http.Client
	cfg    config.MediaConfig
	cb     *gobreaker.CircuitBreaker[string]
	logger *slog.Logger
}

// NewCloudinaryUploader creates an uploader. A nil client gets a traced client with the configured timeout.
func NewCloudinaryUploader(cfg config.MediaConfig, client *http.Client, logger *slog.Logger) *CloudinaryUploader {
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &CloudinaryUploader{
		client: client,
		cfg:    cfg,
		cb:     newCircuitBreaker(cfg.CircuitBreaker),
		logger: logger.With("component", "media"),
	}
}

func newCircuitBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "media-upload-cb",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			var rejected *rejectedError
			return err == nil || errors.As(err, &rejected)
		},
	})
}

// Upload sends the image and returns its delivery URL with the configured transformation applied.
// Every failure wraps ErrUploadFailed. Nothing is retried.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	url, err := u.cb.Execute(func() (string, error) {
		return u.upload(ctx, filename, r)
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "Image upload failed", "filename", filename, "error", err)
		return "", fmt.Errorf("%w: %w", perrors.ErrUploadFailed, err)
	}
	u.logger.InfoContext(ctx, "Image uploaded", "filename", filename, "url", url)
	return url, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (u *CloudinaryUploader) upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.cfg.UploadPreset); err != nil {
		return "", fmt.Errorf("failed to write upload preset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", &rejectedError{status: resp.StatusCode, message: msg}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected upload status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", decodeErr)
	}
	if decoded.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}
	return InjectTransformation(decoded.SecureURL, u.cfg.Transformation), nil
}

// InjectTransformation inserts transformation right after the /upload/ path segment.
// URLs without that segment, or an empty transformation, are returned unchanged.
func InjectTransformation(secureURL, transformation string) string {
	if transformation == "" {
		return secureURL
	}
	before, after, found := strings.Cut(secureURL, uploadSegment)
	if !found {
		return secureURL
	}
	return before + uploadSegment + transformation + "/" + after
}
