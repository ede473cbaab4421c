package processing

import (
	"image/color"
	"testing"

	"camdetect/internal/config"
	"camdetect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestAnnotate_BoxColor(t *testing.T) {
	for _, hex := range []string{"#00FF00", "#FF0000", "#0000FF"} {
		col, err := config.ParseHexColor(hex)
		require.NoError(t, err)

		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC3)
		Annotate(&frame, []models.Detection{{Label: "cup", Confidence: 0.5, Box: models.Box{X1: 10, Y1: 10, X2: 50, Y2: 50}}}, col)

		// Mat stays BGR.
		px := frame.GetVecbAt(10, 30)
		assert.Equal(t, []uint8{col.B, col.G, col.R}, []uint8{px[0], px[1], px[2]}, hex)

		img, err := frame.ToImage()
		require.NoError(t, err)
		r, g, b, _ := img.At(30, 10).RGBA()
		assert.Equal(t, [3]uint8{col.R, col.G, col.B}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}, hex)

		frame.Close()
	}
}

func TestAnnotate_LabelSharesBoxColor(t *testing.T) {
	col := color.RGBA{R: 0, G: 255, B: 0, A: 255}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()
	Annotate(&frame, []models.Detection{{Label: "person", Confidence: 0.87, Box: models.Box{X1: 10, Y1: 60, X2: 190, Y2: 110}}}, col)

	// The caption sits above the box, entirely within rows [0, 56).
	drawn := 0
	for y := 0; y < 56; y++ {
		for x := 0; x < 200; x++ {
			px := frame.GetVecbAt(y, x)
			if px[0] == 0 && px[1] == 0 && px[2] == 0 {
				continue
			}
			drawn++
			assert.Equal(t, []uint8{0, 255, 0}, []uint8{px[0], px[1], px[2]})
		}
	}
	assert.Positive(t, drawn, "caption was not drawn")
}

func TestAnnotate_NoDetectionsLeavesFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 20, 20, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Annotate(&frame, nil, color.RGBA{R: 255, A: 255})

	gray := frame.Reshape(1, 0)
	defer gray.Close()
	assert.Equal(t, 0, gocv.CountNonZero(gray))
}
