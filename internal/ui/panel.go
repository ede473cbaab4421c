package ui

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"camdetect/internal/config"
	"camdetect/internal/ui/cwidget"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type Saver interface {
	Save(cfg config.Config) error
}

type Applier interface {
	Apply(cfg config.Config)
}

// ConfigPanel edits a copy of the configuration. Nothing changes until Save.
type ConfigPanel struct {
	win     fyne.Window
	store   Saver
	applier Applier

	modelSelect *widget.Select
	confSlider  *widget.Slider
	confLabel   *widget.Label
	fpsInput    *cwidget.Input[int]
	swatch      *canvas.Rectangle
	saveButton  *widget.Button

	color string
}

func NewConfigPanel(a fyne.App, current config.Config, store Saver, applier Applier) *ConfigPanel {
	p := &ConfigPanel{
		win:     a.NewWindow("Configuration"),
		store:   store,
		applier: applier,
	}
	p.win.Resize(fyne.NewSize(400, 500))

	options := config.Models[:]
	if !slices.Contains(options, current.Model) {
		options = append(slices.Clone(options), current.Model)
	}
	p.modelSelect = widget.NewSelect(options, nil)
	p.modelSelect.SetSelected(current.Model)

	p.confLabel = widget.NewLabel(formatConfidence(current.ConfidenceThreshold))
	p.confSlider = widget.NewSlider(0, 1)
	p.confSlider.Step = 0.01
	p.confSlider.OnChanged = func(v float64) {
		p.confLabel.SetText(formatConfidence(v))
	}
	p.confSlider.SetValue(current.ConfidenceThreshold)

	p.fpsInput = cwidget.NewIntInput(
		"Frame Rate",
		fmt.Sprintf("%d-%d", config.MinFPS, config.MaxFPS),
		current.FPS,
		config.MinFPS,
		config.MaxFPS,
		nil,
	)

	p.swatch = canvas.NewRectangle(color.Black)
	p.swatch.SetMinSize(fyne.NewSize(32, 32))
	p.setColor(current.BoxColor)

	colorButton := widget.NewButtonWithIcon("Choose Color", theme.ColorPaletteIcon(), p.chooseColor)

	p.saveButton = widget.NewButtonWithIcon("Save Configuration", theme.DocumentSaveIcon(), p.save)
	p.saveButton.Importance = widget.HighImportance

	form := container.NewVBox(
		widget.NewLabelWithStyle("Model:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.modelSelect,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Confidence Threshold:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, p.confLabel, p.confSlider),
		widget.NewSeparator(),
		p.fpsInput,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Box Color:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, p.swatch, nil, colorButton),
		widget.NewSeparator(),
		p.saveButton,
	)

	p.win.SetContent(container.NewPadded(form))

	return p
}

func (p *ConfigPanel) Show() {
	p.win.CenterOnScreen()
	p.win.Show()
}

func (p *ConfigPanel) setColor(hex string) {
	col, err := config.ParseHexColor(hex)
	if err != nil {
		return
	}
	p.color = config.HexColor(col)
	p.swatch.FillColor = col
	p.swatch.Refresh()
}

func (p *ConfigPanel) chooseColor() {
	picker := dialog.NewColorPicker("Box Color", "Pick the color of boxes and labels", func(c color.Color) {
		p.setColor(config.HexColor(c))
	}, p.win)
	picker.Advanced = true
	if col, err := config.ParseHexColor(p.color); err == nil {
		picker.SetColor(col)
	}
	picker.Show()
}

func (p *ConfigPanel) collect() (config.Config, error) {
	fps, err := p.fpsInput.Value()
	if err != nil {
		return config.Config{}, fmt.Errorf("frame rate: %w", err)
	}

	cfg := config.Config{
		Model:               p.modelSelect.Selected,
		ConfidenceThreshold: math.Round(p.confSlider.Value*100) / 100,
		FPS:                 fps,
		BoxColor:            p.color,
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func (p *ConfigPanel) save() {
	cfg, err := p.collect()
	if err != nil {
		dialog.ShowError(err, p.win)
		return
	}

	if err := p.store.Save(cfg); err != nil {
		dialog.ShowError(err, p.win)
		return
	}

	p.applier.Apply(cfg)
	p.win.Close()
}

func formatConfidence(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
