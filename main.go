package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"roitracker/appearance"
	"roitracker/capture"
	"roitracker/session"
	"roitracker/tracking"
	"roitracker/types"
	"roitracker/ui"
)

func main() {
	var videoPath string
	flag.StringVar(&videoPath, "video", "", "path to the (optional) video file; camera 0 is used when omitted")
	flag.StringVar(&videoPath, "v", "", "shorthand for --video")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if err := run(videoPath, logger); err != nil {
		logger.Error().Err(err).Msg("tracker stopped")
		os.Exit(1)
	}
}

func run(videoPath string, logger zerolog.Logger) error {
	source, err := capture.Open(videoPath)
	if err != nil {
		return err
	}
	logger.Info().Str("source", source.Name()).Msg("capture opened")

	trackingConfig := types.DefaultTrackingConfig()
	uiConfig := types.DefaultUIConfig()

	window := ui.NewWindow(uiConfig)
	renderer := ui.NewRenderer(uiConfig, logger.With().Str("component", "ui").Logger())
	engine := tracking.NewEngine(trackingConfig, logger.With().Str("component", "tracking").Logger())

	ctrl := session.NewController[gocv.Mat, *appearance.Model](source, window, engine, renderer, uiConfig, logger.With().Str("component", "session").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printControls()
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printControls prints the key bindings
func printControls() {
	fmt.Println("Controls:")
	fmt.Println("- Press 'i' to select the object to track")
	fmt.Println("- Click the four corners of the object, then press any key")
	fmt.Println("- Press 'q' to quit")
}
