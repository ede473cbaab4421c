package ui

import (
	"image"

	processing "camdetect/processing/detector"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	viewportWidth  = 640
	viewportHeight = 480
)

// DetectApp is the main window. It is also the Display the processor
// publishes to; every update is marshalled onto the Fyne goroutine.
type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	store     Saver
	processor *processing.Processor
	log       *zap.Logger

	videoCanvas  *canvas.Image
	summaryLabel *widget.Label
}

func CreateApp(store Saver, log *zap.Logger) *DetectApp {
	a := app.NewWithID("camdetect")
	w := a.NewWindow("YOLOv8 Object Detector")

	w.Resize(fyne.NewSize(800, 600))

	videoCanvas := canvas.NewImageFromImage(nil)
	videoCanvas.FillMode = canvas.ImageFillContain
	videoCanvas.SetMinSize(fyne.NewSize(viewportWidth, viewportHeight))

	return &DetectApp{
		fyneApp:      a,
		mainWin:      w,
		store:        store,
		log:          log.Named("ui"),
		videoCanvas:  videoCanvas,
		summaryLabel: widget.NewLabel(processing.NothingDetected),
	}
}

// Run builds the window, starts p and blocks until the window is closed.
func (a *DetectApp) Run(p *processing.Processor) {
	a.processor = p

	captureBtn := widget.NewButtonWithIcon("Capture Still Image", theme.MediaPhotoIcon(), func() {
		a.processor.CaptureStill()
	})

	configBtn := widget.NewButtonWithIcon("Configuration", theme.SettingsIcon(), a.openConfig)

	quitBtn := widget.NewButtonWithIcon("Quit", theme.LogoutIcon(), func() {
		a.mainWin.Close()
	})

	videoBackground := canvas.NewRectangle(theme.Color(theme.ColorNameShadow))

	content := container.NewBorder(
		nil,
		container.NewVBox(
			container.NewCenter(a.summaryLabel),
			container.NewGridWithColumns(3, captureBtn, configBtn, quitBtn),
		),
		nil, nil,
		container.NewStack(videoBackground, a.videoCanvas),
	)

	a.mainWin.SetContent(container.NewPadded(content))

	a.mainWin.SetCloseIntercept(func() {
		a.processor.Stop()
		a.mainWin.Close()
	})

	a.processor.Start()

	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *DetectApp) openConfig() {
	NewConfigPanel(a.fyneApp, a.processor.Config(), a.store, a.processor).Show()
}

func (a *DetectApp) ShowFrame(img image.Image) {
	fyne.Do(func() {
		a.videoCanvas.Image = img
		a.videoCanvas.Refresh()
	})
}

func (a *DetectApp) ShowSummary(text string) {
	fyne.Do(func() {
		a.summaryLabel.SetText(text)
	})
}

func (a *DetectApp) ShowError(err error) {
	a.log.Warn("reporting error to user", zap.Error(err))
	fyne.Do(func() {
		dialog.ShowError(err, a.mainWin)
	})
}
