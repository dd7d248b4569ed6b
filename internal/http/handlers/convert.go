package handlers

import (
	"context"
	"errors"
	"io"
	"mime"

	"github.com/gofiber/fiber/v2"

	"vtracer-api/internal/domain"
	"vtracer-api/internal/infra/logging"
)

const (
	imageField   = "image"
	optionsField = "options"
)

// Converter is the conversion service as seen by the HTTP layer.
type Converter interface {
	Check(contentType string, size int64) error
	Convert(ctx context.Context, up domain.Upload, rawOptions string) (domain.Result, error)
}

// ConvertHandler serves POST /api/convert.
type ConvertHandler struct {
	svc Converter
}

// NewConvertHandler creates a ConvertHandler.
func NewConvertHandler(svc Converter) *ConvertHandler {
	return &ConvertHandler{svc: svc}
}

// Handle reads the multipart upload, runs the conversion and streams the SVG back.
func (h *ConvertHandler) Handle(c *fiber.Ctx) error {
	fh, err := c.FormFile(imageField)
	if err != nil {
		return domain.InvalidInput("Missing image file: send it as multipart form field '" + imageField + "'")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if err := h.svc.Check(contentType, fh.Size); err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return domain.InvalidInput("Cannot read uploaded image: " + err.Error())
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return domain.InvalidInput("Cannot read uploaded image: " + err.Error())
	}

	res, err := h.svc.Convert(c.UserContext(), domain.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, c.FormValue(optionsField))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, domain.SVGContentType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition(res.Filename))
	return c.Send(res.Document)
}

func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment; filename=" + domain.OutputFilename("")
}

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindPayloadTooLarge:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error as JSON {"detail": "..."}. Errors that
// are neither domain nor fiber errors are reported without their text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	msg := err.Error()

	var fe *fiber.Error
	if domain.KindOf(err) == 0 && !errors.As(err, &fe) {
		msg = "Internal Server Error"
	}

	if code >= fiber.StatusInternalServerError {
		logging.Error("Request failed", "path", c.Path(), "status", code, "error", err)
	} else {
		logging.Warn("Request failed", "path", c.Path(), "status", code, "detail", msg)
	}

	return c.Status(code).JSON(fiber.Map{"detail": msg})
}
