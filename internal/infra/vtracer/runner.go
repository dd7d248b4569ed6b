package vtracer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WEBP decoder

	"vtracer-api/internal/config"
	"vtracer-api/internal/domain"
)

// waitDelay bounds how long a killed engine may keep its stderr pipe open.
const waitDelay = 2 * time.Second

// ErrEmptyOutput is returned when the engine exits cleanly but writes no document.
var ErrEmptyOutput = errors.New("vtracer produced an empty document")

// Runner converts images by invoking the vtracer command line program. Each
// call works in its own scratch directory, removed before Convert returns.
type Runner struct {
	cfg config.TracerConfig
}

// NewRunner creates a Runner for the given tracer settings.
func NewRunner(cfg config.TracerConfig) *Runner {
	return &Runner{cfg: cfg}
}

// Convert traces image into an SVG document using opts.
func (r *Runner) Convert(ctx context.Context, image []byte, opts domain.Options) ([]byte, error) {
	dir, err := os.MkdirTemp(r.cfg.ScratchDir, "vtracer-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input, err := r.writeInput(dir, image)
	if err != nil {
		return nil, err
	}
	output := filepath.Join(dir, "output.svg")

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.cfg.BinaryPath, Args(input, output, opts)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("vtracer failed: %s", msg)
		}
		return nil, fmt.Errorf("vtracer failed: %w", err)
	}

	svg, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("cannot read vtracer output: %w", err)
	}
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, ErrEmptyOutput
	}
	return svg, nil
}

// writeInput stores the image for the CLI. With normalization on, the image
// is decoded (honouring EXIF orientation) and re-encoded as PNG.
func (r *Runner) writeInput(dir string, image []byte) (string, error) {
	if !r.cfg.NormalizeInput {
		path := filepath.Join(dir, "input"+mimetype.Detect(image).Extension())
		if err := os.WriteFile(path, image, 0o600); err != nil {
			return "", fmt.Errorf("cannot write input image: %w", err)
		}
		return path, nil
	}

	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("cannot decode image: %w", err)
	}

	path := filepath.Join(dir, "input.png")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("cannot write input image: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return "", fmt.Errorf("cannot encode input image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cannot write input image: %w", err)
	}
	return path, nil
}

// Args builds the vtracer command line for one conversion. With a preset only
// the preset is sent: the CLI applies explicit flags on top of a preset, so
// sending the resolved fields would undo it.
func Args(input, output string, opts domain.Options) []string {
	args := []string{"--input", input, "--output", output}
	if opts.Preset != "" {
		return append(args, "--preset", opts.Preset)
	}
	return append(args,
		"--colormode", string(opts.ColorMode),
		"--hierarchical", string(opts.Hierarchical),
		"--mode", string(opts.Mode),
		"--filter_speckle", strconv.Itoa(opts.FilterSpeckle),
		"--color_precision", strconv.Itoa(opts.ColorPrecision),
		"--gradient_step", strconv.Itoa(opts.GradientStep),
		"--corner_threshold", strconv.Itoa(opts.CornerThreshold),
		"--segment_length", strconv.FormatFloat(opts.SegmentLength, 'f', -1, 64),
		"--splice_threshold", strconv.Itoa(opts.SpliceThreshold),
		"--path_precision", strconv.Itoa(opts.PathPrecision),
	)
}
