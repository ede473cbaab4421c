package capture

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

type VideoSource struct {
	closeOnce sync.Once

	width  int
	height int

	vc *gocv.VideoCapture
}

func OpenCamera(deviceID int, width, height int) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return newVideoSource(vc, width, height), nil
}

func OpenFile(path string, width, height int) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}

	return newVideoSource(vc, width, height), nil
}

func newVideoSource(vc *gocv.VideoCapture, width, height int) *VideoSource {
	return &VideoSource{
		width:  width,
		height: height,
		vc:     vc,
	}
}

// Read grabs the next frame. Drivers that ignore the requested resolution
// get their frames resized so every frame is width x height.
func (s *VideoSource) Read(dst *gocv.Mat) bool {
	if ok := s.vc.Read(dst); !ok || dst.Empty() {
		return false
	}

	if dst.Cols() != s.width || dst.Rows() != s.height {
		gocv.Resize(*dst, dst, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationLinear)
	}

	return true
}

func (s *VideoSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.vc.Close()
	})
	return err
}
