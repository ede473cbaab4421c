package capture

import (
	"gocv.io/x/gocv"
)

// FrameSource yields BGR frames. Read reports false when no frame could be
// acquired; dst is left unspecified in that case.
type FrameSource interface {
	Read(dst *gocv.Mat) bool
	Close() error
}
