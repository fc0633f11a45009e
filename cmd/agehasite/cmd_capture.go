package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agehasite/internal/capture"
)

var (
	captureURL string
	captureOut string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Screenshot the running site for /preview.png",
	Long: `Opens the site in headless Chromium, waits until the calendar has
loaded and writes a PNG used as the link-preview image.
The server must already be running.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVar(&captureURL, "url", "", "Page URL (default: capture.url from config)")
	captureCmd.Flags().StringVar(&captureOut, "out", "", "Output PNG path (default: capture.output from config)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := capture.Options{
		URL:        conf.Capture.URL,
		OutputPath: conf.Capture.Output,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
	}
	if captureURL != "" {
		opts.URL = captureURL
	}
	if captureOut != "" {
		opts.OutputPath = captureOut
	}
	return capture.CapturePagePNG(ctx, opts)
}
