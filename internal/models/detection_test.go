package models

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetection_Text(t *testing.T) {
	d := Detection{Label: "person", Confidence: 0.876, Box: Box{X1: 1, Y1: 2, X2: 3, Y2: 4}}

	assert.Equal(t, "person: 0.88", d.Caption())
	assert.Equal(t, "person (0.88)", d.Short())
}

func TestBox_Rect(t *testing.T) {
	r := image.Rect(10, 20, 50, 60)
	b := BoxFromRect(r)

	assert.Equal(t, Box{X1: 10, Y1: 20, X2: 50, Y2: 60}, b)
	assert.Equal(t, r, b.Rect())
	assert.True(t, b.Valid())
	assert.False(t, Box{X1: 5, Y1: 5, X2: 5, Y2: 9}.Valid())
}
