package conversion

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"vtracer-api/internal/domain"
	"vtracer-api/internal/infra/logging"
)

// Engine turns raster image bytes into a vector document.
type Engine interface {
	Convert(ctx context.Context, image []byte, opts domain.Options) ([]byte, error)
}

// Service validates uploads, resolves options and calls the engine.
type Service struct {
	engine         Engine
	maxUploadBytes int64
}

// NewService creates a Service backed by engine.
func NewService(engine Engine, maxUploadBytes int64) *Service {
	return &Service{engine: engine, maxUploadBytes: maxUploadBytes}
}

// MaxUploadBytes returns the upload ceiling.
func (s *Service) MaxUploadBytes() int64 { return s.maxUploadBytes }

// Check validates the declared content type and size of an upload. Callers
// use it before reading the upload body.
func (s *Service) Check(contentType string, size int64) error {
	if !domain.IsAllowedContentType(contentType) {
		return domain.InvalidInput(fmt.Sprintf("Invalid file type: %s. Allowed types: %s",
			contentType, strings.Join(domain.AllowedContentTypes, ", ")))
	}
	if size > s.maxUploadBytes {
		return domain.PayloadTooLarge(fmt.Sprintf("File too large. Maximum %s supported.",
			humanize.IBytes(uint64(s.maxUploadBytes))))
	}
	if size == 0 {
		return domain.InvalidInput("Uploaded file is empty")
	}
	return nil
}

// Convert runs one conversion. rawOptions is the client's options text and
// may be empty or malformed; it never causes a failure on its own.
func (s *Service) Convert(ctx context.Context, up domain.Upload, rawOptions string) (domain.Result, error) {
	if err := s.Check(up.ContentType, int64(len(up.Data))); err != nil {
		return domain.Result{}, err
	}

	declared := domain.NormalizeContentType(up.ContentType)
	if detected := mimetype.Detect(up.Data); !detected.Is(declared) {
		logging.Debug("Declared content type differs from content", "declared", declared, "detected", detected.String())
	}

	res := domain.ResolveOptions(rawOptions)
	for _, issue := range res.Issues {
		logging.Warn("Invalid conversion options", "filename", up.Filename, "issue", issue)
	}

	logging.Info("Converting image",
		"filename", up.Filename,
		"size", len(up.Data),
		"size_human", humanize.IBytes(uint64(len(up.Data))),
		"preset", res.Options.Preset,
	)

	svg, err := s.engine.Convert(ctx, up.Data, res.Options)
	if err != nil {
		logging.Error("Conversion failed", "filename", up.Filename, "error", err)
		return domain.Result{}, domain.ConversionFailure(err)
	}

	logging.Info("Conversion successful", "filename", up.Filename, "svg_size", len(svg))
	return domain.Result{Document: svg, Filename: domain.OutputFilename(up.Filename)}, nil
}
