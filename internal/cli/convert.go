package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"vtracer-api/internal/config"
	"vtracer-api/internal/conversion"
	"vtracer-api/internal/domain"
	"vtracer-api/internal/infra/logging"
	"vtracer-api/internal/infra/vtracer"
)

type convertOpts struct {
	input       string
	output      string
	options     string
	contentType string
}

func ConvertCommand() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:     "convert",
		Short:   "Convert a local image file to SVG",
		Example: `vtracer-api convert --input logo.png --options '{"color_mode":"bw"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := spinner.New(spinner.CharSets[4], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			s.Suffix = " converting " + filepath.Base(opts.input)
			s.Start()
			out, size, err := convertFile(cmd, opts)
			s.Stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", out, humanize.IBytes(uint64(size)))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Raster image to convert")
	cmd.Flags().StringVar(&opts.output, "output", "", "Where to write the SVG, defaults to the derived name next to the input")
	cmd.Flags().StringVar(&opts.options, "options", "", "Conversion options as a JSON object")
	cmd.Flags().StringVar(&opts.contentType, "content-type", "", "Declared image type, sniffed from the content when empty")
	MarkFlagsRequired(cmd, "input")

	return cmd
}

// convertFile runs one local conversion through the same service the HTTP
// API uses. It returns the written path and document size.
func convertFile(cmd *cobra.Command, opts convertOpts) (string, int, error) {
	cfg := config.Load()
	logging.SetLogLevel(cfg.Logger.Level)

	data, err := os.ReadFile(opts.input)
	if err != nil {
		return "", 0, fmt.Errorf("read input: %w", err)
	}

	contentType := opts.contentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	svc := conversion.NewService(vtracer.NewRunner(cfg.Tracer), cfg.Limits.MaxUploadBytes)
	res, err := svc.Convert(cmd.Context(), domain.Upload{
		Filename:    filepath.Base(opts.input),
		ContentType: contentType,
		Data:        data,
	}, opts.options)
	if err != nil {
		return "", 0, err
	}

	out := opts.output
	if out == "" {
		out = filepath.Join(filepath.Dir(opts.input), res.Filename)
	}
	if err := os.WriteFile(out, res.Document, 0o644); err != nil {
		return "", 0, fmt.Errorf("write output: %w", err)
	}
	return out, len(res.Document), nil
}

func MarkFlagsRequired(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
}
