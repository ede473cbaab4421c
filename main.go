package main

import (
	"camdetect/internal/config"
	"camdetect/internal/logger"
	ui "camdetect/internal/ui"
	"camdetect/processing/capture"
	processing "camdetect/processing/detector"

	"go.uber.org/zap"
)

func main() {
	if err := logger.InitDevelopment(); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	store := config.NewStore(config.DefaultConfigPath)
	cfg, err := store.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	source, err := capture.NewSource(capture.DefaultDevice, capture.FrameWidth, capture.FrameHeight)
	if err != nil {
		log.Fatal("failed to open capture source", zap.String("device", capture.DefaultDevice), zap.Error(err))
	}

	app := ui.CreateApp(store, log)
	proc := processing.NewProcessor(source, config.NewState(cfg), processing.LoadYOLO, app, processing.TimerScheduler{}, log)
	defer proc.Stop()

	app.Run(proc)
}
