package processing

import (
	"image"
	"image/color"

	"camdetect/internal/models"

	"gocv.io/x/gocv"
)

const (
	boxThickness  = 2
	textScale     = 0.9
	textThickness = 2
	textOffset    = 10
)

// Annotate draws every detection onto frame. col is RGB; gocv maps it onto
// the BGR layout of the Mat, so the box and its caption come out in the
// configured color once the Mat is converted for display.
func Annotate(frame *gocv.Mat, detections []models.Detection, col color.RGBA) {
	for _, d := range detections {
		gocv.Rectangle(frame, d.Box.Rect(), col, boxThickness)
		gocv.PutText(frame, d.Caption(), image.Pt(d.Box.X1, d.Box.Y1-textOffset),
			gocv.FontHersheySimplex, textScale, col, textThickness)
	}
}
