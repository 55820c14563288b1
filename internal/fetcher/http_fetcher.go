// Package fetcher downloads source documents and prepares them for extraction.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"billrecon/internal/config"
	"billrecon/internal/domain"
)

// HTTPFetcher implements port.DocumentFetcher over HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	maxDim    int
	userAgent string
	log       *zap.Logger
}

// NewHTTPFetcher creates an HTTPFetcher from config.
func NewHTTPFetcher(cfg *config.FetcherConfig, log *zap.Logger) *HTTPFetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  cfg.MaxBytes(),
		maxDim:    cfg.MaxImageDimension,
		userAgent: cfg.UserAgent,
		log:       log.Named("fetcher.http"),
	}
}

// Fetch downloads the document at documentURL, checks its type and size, and
// normalizes images to JPEG or PNG within the configured dimension.
func (f *HTTPFetcher) Fetch(ctx context.Context, documentURL string) (*domain.Document, error) {
	if err := validateURL(documentURL); err != nil {
		return nil, err
	}

	body, err := f.download(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(body)
	f.log.Debug("document downloaded",
		zap.String("url", documentURL),
		zap.Int("bytes", len(body)),
		zap.String("mime", mt.String()))

	switch {
	case mt.Is("application/pdf"):
		pages, err := countPDFPages(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAcquisitionFailed, err)
		}
		if pages == 0 {
			return nil, fmt.Errorf("%w: document has no pages", domain.ErrAcquisitionFailed)
		}
		return &domain.Document{SourceURL: documentURL, Bytes: body, ContentType: "application/pdf", PageCount: pages}, nil

	case strings.HasPrefix(mt.String(), "image/"):
		data, contentType, err := f.prepareImage(body, mt)
		if err != nil {
			return nil, err
		}
		return &domain.Document{SourceURL: documentURL, Bytes: data, ContentType: contentType, PageCount: 1}, nil

	default:
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrAcquisitionFailed, domain.ErrUnsupportedFileType, mt.String())
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %w: %v", domain.ErrAcquisitionFailed, domain.ErrInvalidDocumentURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %w: scheme must be http or https", domain.ErrAcquisitionFailed, domain.ErrInvalidDocumentURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %w: missing host", domain.ErrAcquisitionFailed, domain.ErrInvalidDocumentURL)
	}
	return nil
}

func (f *HTTPFetcher) download(ctx context.Context, documentURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", domain.ErrAcquisitionFailed, domain.ErrInvalidDocumentURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: downloading document: %v", domain.ErrAcquisitionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: document server returned status %d", domain.ErrAcquisitionFailed, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrFileTooLarge, resp.ContentLength, f.maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: reading document: %v", domain.ErrAcquisitionFailed, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: exceeds limit of %d bytes", domain.ErrFileTooLarge, f.maxBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrAcquisitionFailed)
	}
	return body, nil
}

// countPDFPages returns the page count. The pdf reader panics on some
// corrupt inputs, so panics are turned into errors.
func countPDFPages(body []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return 0, fmt.Errorf("unreadable pdf: %w", err)
	}
	return reader.NumPage(), nil
}

// prepareImage decodes the image, shrinks it to fit maxDim, and re-encodes
// formats the extraction providers do not accept as PNG. JPEG and PNG inputs
// that already fit are passed through untouched.
func (f *HTTPFetcher) prepareImage(body []byte, mt *mimetype.MIME) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %w: %s", domain.ErrAcquisitionFailed, domain.ErrUnsupportedFileType, mt.String())
		}
		return nil, "", fmt.Errorf("%w: undecodable image: %v", domain.ErrAcquisitionFailed, err)
	}

	contentType := mt.String()
	_, native := domain.AllowedContentTypes[contentType]
	b := img.Bounds()
	tooLarge := f.maxDim > 0 && (b.Dx() > f.maxDim || b.Dy() > f.maxDim)

	if native && !tooLarge {
		return body, contentType, nil
	}

	if tooLarge {
		f.log.Debug("downscaling image",
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
			zap.Int("max", f.maxDim))
		img = imaging.Fit(img, f.maxDim, f.maxDim, imaging.Lanczos)
	}

	format := imaging.PNG
	outType := "image/png"
	if contentType == "image/jpeg" {
		format = imaging.JPEG
		outType = "image/jpeg"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), outType, nil
}
