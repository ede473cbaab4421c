package processing

import (
	"errors"
	"fmt"
	"image"
	"os"

	"camdetect/internal/models"

	"gocv.io/x/gocv"
)

const (
	inputSize    = 640
	nmsThreshold = 0.45
)

type Detector interface {
	// Detect returns the detections whose confidence is at least threshold,
	// best first.
	Detect(frame gocv.Mat, threshold float64) ([]models.Detection, error)
	Close() error
}

// ModelLoader opens the detector for a model identifier.
type ModelLoader func(model string) (Detector, error)

// LoadYOLO treats the model identifier as the path of a YOLOv8 ONNX export.
func LoadYOLO(model string) (Detector, error) {
	d, err := NewYOLODetector(model)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type YOLODetector struct {
	net gocv.Net
}

func NewYOLODetector(modelPath string) (*YOLODetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network %s", modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, errors.Join(errBackend, errTarget)
	}

	return &YOLODetector{net: net}, nil
}

func (d *YOLODetector) Detect(frame gocv.Mat, threshold float64) ([]models.Detection, error) {
	if frame.Empty() {
		return nil, errors.New("empty frame")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	// [1, 4+classes, anchors]
	sizes := output.Size()
	if len(sizes) != 3 || sizes[1] <= 4 {
		return nil, fmt.Errorf("unexpected model output shape %v", sizes)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read model output: %w", err)
	}

	scaleX := float64(frame.Cols()) / inputSize
	scaleY := float64(frame.Rows()) / inputSize
	boxes, scores, classes := decodeOutput(data, sizes[1], sizes[2], float32(threshold), scaleX, scaleY)
	if len(boxes) == 0 {
		return nil, nil
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	keep := suppress(boxes, scores, classes, float32(threshold))

	detections := make([]models.Detection, 0, len(keep))
	for _, idx := range keep {
		box := models.BoxFromRect(boxes[idx].Intersect(bounds))
		if !box.Valid() {
			continue
		}
		detections = append(detections, models.Detection{
			Label:      labelFor(classes[idx]),
			Confidence: float64(scores[idx]),
			Box:        box,
		})
	}

	return detections, nil
}

func (d *YOLODetector) Close() error {
	return d.net.Close()
}

// decodeOutput reads a YOLOv8 head laid out attribute-major: rows 0-3 hold
// cx, cy, w, h and the remaining rows one score per class, each row
// anchors wide. Boxes are scaled back to frame pixels.
func decodeOutput(data []float32, attrs, anchors int, threshold float32, scaleX, scaleY float64) ([]image.Rectangle, []float32, []int) {
	var (
		boxes   []image.Rectangle
		scores  []float32
		classes []int
	)

	if len(data) < attrs*anchors {
		return nil, nil, nil
	}

	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < attrs-4; c++ {
			if s := data[(4+c)*anchors+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < threshold {
			continue
		}

		cx := float64(data[i])
		cy := float64(data[anchors+i])
		w := float64(data[2*anchors+i])
		h := float64(data[3*anchors+i])

		boxes = append(boxes, image.Rect(
			int((cx-w/2)*scaleX),
			int((cy-h/2)*scaleY),
			int((cx+w/2)*scaleX),
			int((cy+h/2)*scaleY),
		))
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}

	return boxes, scores, classes
}

// suppress runs non-maximum suppression within each class only. Boxes are
// shifted apart by class so overlapping objects of different classes never
// compete; the returned indices refer to the unshifted boxes.
func suppress(boxes []image.Rectangle, scores []float32, classes []int, threshold float32) []int {
	stride := 0
	for _, b := range boxes {
		stride = max(stride, b.Max.X, b.Max.Y)
	}
	stride++

	shifted := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		off := classes[i] * stride
		shifted[i] = b.Add(image.Pt(off, off))
	}

	return gocv.NMSBoxes(shifted, scores, threshold, nmsThreshold)
}
