package models

import (
	"fmt"
	"image"
)

type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Box holds pixel coordinates with X1 < X2 and Y1 < Y2.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func BoxFromRect(r image.Rectangle) Box {
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b Box) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// Caption is the text drawn above the box.
func (d Detection) Caption() string {
	return fmt.Sprintf("%s: %.2f", d.Label, d.Confidence)
}

// Short is the form used in the summary line.
func (d Detection) Short() string {
	return fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence)
}
