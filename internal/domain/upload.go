package domain

import (
	"mime"
	"path"
	"strings"
)

const (
	// SVGContentType is the media type of every successful response.
	SVGContentType = "image/svg+xml"
	// SVGExtension is appended to the stem of the uploaded filename.
	SVGExtension = ".svg"
)

// AllowedContentTypes lists the raster formats accepted for conversion.
var AllowedContentTypes = []string{
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/webp",
	"image/tiff",
	"image/bmp",
	"image/gif",
}

// Upload is one uploaded image. It lives only for the duration of a request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is a generated vector document and the filename suggested for it.
type Result struct {
	Document []byte
	Filename string
}

// NormalizeContentType strips media-type parameters and lower-cases the type.
func NormalizeContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(contentType)
}

// IsAllowedContentType reports whether contentType is one of AllowedContentTypes.
func IsAllowedContentType(contentType string) bool {
	ct := NormalizeContentType(contentType)
	for _, allowed := range AllowedContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// OutputFilename derives the SVG filename from the uploaded one: directories
// are dropped and the last extension is replaced with .svg.
func OutputFilename(original string) string {
	name := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	if strings.TrimSpace(name) == "" {
		name = "output"
	}
	return name + SVGExtension
}
