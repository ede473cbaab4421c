package capture

import (
	"fmt"
	"strconv"
)

const (
	DefaultDevice string = "0"

	FrameWidth  int = 640
	FrameHeight int = 480
)

// NewSource opens a camera when device is a numeric index and a video file
// otherwise.
func NewSource(device string, width, height int) (FrameSource, error) {
	if device == "" {
		return nil, fmt.Errorf("empty capture device")
	}

	var (
		src *VideoSource
		err error
	)
	if id, convErr := strconv.Atoi(device); convErr == nil {
		src, err = OpenCamera(id, width, height)
	} else {
		src, err = OpenFile(device, width, height)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}
