package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"placeholder/internal/placeholder"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output path, "-" for stdout, empty for placeholder-WxH.ext
	text      string // overlay text
	fontSize  int    // explicit font size, 0 selects by area
	wrap      bool   // wrap text to wrapWidth
	wrapWidth int    // wrap width in percent of the image width, 0 uses the configured default
	format    string // overrides IMAGE_FORMAT
	verbose   bool   // log to stderr
}

// newRenderCmd renders a single image to a file without starting the server.
// It uses the same configuration, validation and pipeline as the HTTP route.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:     "render <WxH> <bgColor> <fgColor>",
		Short:   "Render a placeholder image to a file",
		Example: "  placeholder render 800x600 ffffff 000000 --text Hello -o hello.png",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (\"-\" for stdout)")
	cmd.Flags().StringVar(&opts.text, "text", "", "text to draw")
	cmd.Flags().IntVar(&opts.fontSize, "font-size", 0, "font size (0 = automatic)")
	cmd.Flags().BoolVar(&opts.wrap, "wrap", false, "wrap text")
	cmd.Flags().IntVar(&opts.wrapWidth, "wrap-width", 0, "wrap width in percent of image width")
	cmd.Flags().StringVar(&opts.format, "format", "", "image format: png, jpeg, bmp")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.format != "" {
		cfg.ImageFormat = opts.format
	}

	log := zap.NewNop()
	if opts.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer log.Sync()
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	raw := placeholder.RawRequest{
		Dimensions: args[0],
		Background: args[1],
		Foreground: args[2],
		Text:       opts.text,
	}
	if opts.fontSize != 0 {
		raw.FontSize = strconv.Itoa(opts.fontSize)
	}
	if opts.wrap {
		raw.TextWrap = "true"
	}
	if opts.wrapWidth != 0 {
		raw.TextWrapWidth = strconv.Itoa(opts.wrapWidth)
	}

	req, err := placeholder.Parse(raw, a.limits())
	if err != nil {
		return errors.New(placeholder.PublicMessage(err, true))
	}

	res, err := a.service.Generate(req)
	if err != nil {
		return errors.New(placeholder.PublicMessage(err, true))
	}

	if opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(res.Entry.Data)
		return err
	}

	path := opts.output
	if path == "" {
		path = placeholder.Filename(req, res.Entry.Format.Extension())
	}
	if err := os.WriteFile(path, res.Entry.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", path, len(res.Entry.Data))
	return nil
}
