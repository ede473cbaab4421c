package processing

import (
	"fmt"
	"image"
	"sync"
	"time"

	"camdetect/internal/config"
	"camdetect/processing/capture"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// maxConsecutiveFailures is how many detection errors in a row are
// tolerated before the display is told about it.
const maxConsecutiveFailures = 5

type Display interface {
	ShowFrame(img image.Image)
	ShowSummary(text string)
	ShowError(err error)
}

// Processor runs the capture cycle: acquire a frame (or reuse the frozen
// one), detect, annotate, publish, reschedule. A cycle always completes
// before the next one is scheduled.
type Processor struct {
	source  capture.FrameSource
	state   *config.State
	load    ModelLoader
	display Display
	sched   Scheduler
	log     *zap.Logger

	stillRequested bool
	retryModel     bool
	reqMu          sync.Mutex

	mu          sync.Mutex
	det         Detector
	model       string
	failedModel string
	raw         gocv.Mat
	next        gocv.Mat
	hasRaw      bool
	out         gocv.Mat
	failures    int
	stopped     bool
}

func NewProcessor(source capture.FrameSource, state *config.State, load ModelLoader, display Display, sched Scheduler, log *zap.Logger) *Processor {
	return &Processor{
		source:  source,
		state:   state,
		load:    load,
		display: display,
		sched:   sched,
		log:     log.Named("processor"),
		raw:     gocv.NewMat(),
		next:    gocv.NewMat(),
		out:     gocv.NewMat(),
	}
}

// CaptureStill freezes the last acquired frame for the next cycle.
func (p *Processor) CaptureStill() {
	p.reqMu.Lock()
	defer p.reqMu.Unlock()
	p.stillRequested = true
}

// Apply replaces the current configuration. The next cycle picks up the new
// threshold, color and interval, and reloads the model if it changed. A
// model that failed to load earlier is tried again.
func (p *Processor) Apply(cfg config.Config) {
	p.state.Set(cfg)
	p.reqMu.Lock()
	p.retryModel = true
	p.reqMu.Unlock()
	p.log.Info("configuration applied",
		zap.String("model", cfg.Model),
		zap.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		zap.Int("fps", cfg.FPS),
		zap.String("box_color", cfg.BoxColor),
	)
}

func (p *Processor) Config() config.Config {
	return p.state.Get()
}

func (p *Processor) Start() {
	p.sched.After(0, p.run)
}

func (p *Processor) run() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	delay := p.step()
	p.mu.Unlock()

	p.sched.After(delay, p.run)
}

// Step runs a single cycle and returns the delay before the next one.
func (p *Processor) Step() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return p.state.Get().Interval()
	}
	return p.step()
}

func (p *Processor) step() time.Duration {
	cfg := p.state.Get()

	still, retry := p.takeRequests()
	if retry {
		p.failedModel = ""
	}

	if p.acquire(still) {
		p.process(cfg)
	}

	return p.state.Get().Interval()
}

func (p *Processor) takeRequests() (still, retry bool) {
	p.reqMu.Lock()
	defer p.reqMu.Unlock()
	still, retry = p.stillRequested, p.retryModel
	p.stillRequested, p.retryModel = false, false
	return still, retry
}

func (p *Processor) acquire(frozen bool) bool {
	if frozen {
		if !p.hasRaw {
			p.log.Debug("still capture requested before any frame was read")
		}
		return p.hasRaw
	}

	// A failed read may release dst, so the last good frame is only
	// replaced once a new one has arrived.
	if !p.source.Read(&p.next) {
		p.log.Debug("frame read failed")
		return false
	}
	p.raw, p.next = p.next, p.raw
	p.hasRaw = true
	return true
}

func (p *Processor) process(cfg config.Config) {
	p.ensureModel(cfg.Model)
	p.raw.CopyTo(&p.out)

	if p.det == nil {
		p.display.ShowSummary(fmt.Sprintf("Detection failed: model %s unavailable", cfg.Model))
	} else if detections, err := p.det.Detect(p.raw, cfg.ConfidenceThreshold); err != nil {
		p.reportFailure(err)
	} else {
		p.failures = 0
		Annotate(&p.out, detections, cfg.Color())
		p.display.ShowSummary(Summarize(detections))
	}

	img, err := p.out.ToImage()
	if err != nil {
		p.log.Error("failed to convert frame", zap.Error(err))
		return
	}
	p.display.ShowFrame(img)
}

// ensureModel loads model when it differs from the loaded one. A model
// that failed to load is not retried until the configuration is applied
// again.
func (p *Processor) ensureModel(model string) {
	if model == p.model || model == p.failedModel {
		return
	}

	det, err := p.load(model)
	if err != nil {
		p.failedModel = model
		p.log.Error("failed to load model", zap.String("model", model), zap.Error(err))
		p.display.ShowError(fmt.Errorf("failed to load model %s: %w", model, err))
		return
	}

	if p.det != nil {
		if err := p.det.Close(); err != nil {
			p.log.Warn("failed to close previous model", zap.String("model", p.model), zap.Error(err))
		}
	}

	p.log.Info("model loaded", zap.String("model", model))
	p.det = det
	p.model = model
	p.failedModel = ""
	p.failures = 0
}

func (p *Processor) reportFailure(err error) {
	p.failures++
	p.log.Error("detection failed", zap.Error(err), zap.Int("consecutive", p.failures))
	p.display.ShowSummary(fmt.Sprintf("Detection failed: %v", err))

	if p.failures == maxConsecutiveFailures {
		p.display.ShowError(fmt.Errorf("detection failed %d times in a row: %w", p.failures, err))
	}
}

// Stop waits for a running cycle, then releases the source, the model and
// the frame buffers. No cycle runs afterwards.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true

	if p.det != nil {
		if err := p.det.Close(); err != nil {
			p.log.Warn("failed to close model", zap.Error(err))
		}
		p.det = nil
	}
	if err := p.source.Close(); err != nil {
		p.log.Warn("failed to close capture source", zap.Error(err))
	}
	p.raw.Close()
	p.next.Close()
	p.out.Close()
}
