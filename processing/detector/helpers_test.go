package processing

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"camdetect/internal/config"
	"camdetect/internal/models"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// fakeSource stamps the read counter into the blue channel of every frame.
// With wipe set, a failed read releases dst the way VideoCapture does.
type fakeSource struct {
	reads  int
	fail   bool
	wipe   bool
	closed bool
}

func (s *fakeSource) Read(dst *gocv.Mat) bool {
	s.reads++
	if s.fail {
		if s.wipe {
			empty := gocv.NewMat()
			defer empty.Close()
			empty.CopyTo(dst)
		}
		return false
	}
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(s.reads), 0, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(dst)
	return true
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeDetector struct {
	model      string
	dets       []models.Detection
	err        error
	seen       []uint8
	thresholds []float64
	closed     bool
}

func (d *fakeDetector) Detect(frame gocv.Mat, threshold float64) ([]models.Detection, error) {
	d.seen = append(d.seen, frame.GetVecbAt(0, 0)[0])
	d.thresholds = append(d.thresholds, threshold)
	return d.dets, d.err
}

func (d *fakeDetector) Close() error {
	d.closed = true
	return nil
}

// fakeLoader fails on "missing.onnx" until installed is set.
type fakeLoader struct {
	detectors map[string]*fakeDetector
	loaded    []string
	installed bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{detectors: make(map[string]*fakeDetector)}
}

func (l *fakeLoader) Load(model string) (Detector, error) {
	l.loaded = append(l.loaded, model)
	if model == "missing.onnx" && !l.installed {
		return nil, errors.New("model file not found")
	}
	d := &fakeDetector{model: model}
	l.detectors[model] = d
	return d, nil
}

type fakeDisplay struct {
	frames    []image.Image
	summaries []string
	errs      []error
}

func (d *fakeDisplay) ShowFrame(img image.Image) { d.frames = append(d.frames, img) }
func (d *fakeDisplay) ShowSummary(text string)   { d.summaries = append(d.summaries, text) }
func (d *fakeDisplay) ShowError(err error)       { d.errs = append(d.errs, err) }

func (d *fakeDisplay) lastSummary() string {
	if len(d.summaries) == 0 {
		return ""
	}
	return d.summaries[len(d.summaries)-1]
}

type fakeScheduler struct {
	delays  []time.Duration
	pending func()
}

func (s *fakeScheduler) After(d time.Duration, fn func()) {
	s.delays = append(s.delays, d)
	s.pending = fn
}

func (s *fakeScheduler) runNext() {
	fn := s.pending
	s.pending = nil
	if fn != nil {
		fn()
	}
}

type harness struct {
	proc    *Processor
	source  *fakeSource
	loader  *fakeLoader
	display *fakeDisplay
	sched   *fakeScheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		source:  &fakeSource{},
		loader:  newFakeLoader(),
		display: &fakeDisplay{},
		sched:   &fakeScheduler{},
	}
	h.proc = NewProcessor(h.source, config.NewState(config.Default()), h.loader.Load, h.display, h.sched, zap.NewNop())
	t.Cleanup(h.proc.Stop)
	return h
}

func (h *harness) detector() *fakeDetector {
	return h.loader.detectors[h.proc.Config().Model]
}

func person(conf float64) models.Detection {
	return named("person", conf)
}

func named(label string, conf float64) models.Detection {
	return models.Detection{Label: label, Confidence: conf, Box: models.Box{X1: 2, Y1: 12, X2: 20, Y2: 30}}
}

func labels(n int) []models.Detection {
	out := make([]models.Detection, n)
	for i := range out {
		out[i] = named(fmt.Sprintf("obj%d", i), 0.5+float64(i)/100)
	}
	return out
}
