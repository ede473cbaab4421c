package processing

import (
	"testing"

	"camdetect/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, NothingDetected, Summarize(nil))
		assert.Equal(t, NothingDetected, Summarize([]models.Detection{}))
	})

	t.Run("fewer than three", func(t *testing.T) {
		got := Summarize([]models.Detection{person(0.9), named("dog", 0.456)})
		assert.Equal(t, "Detected: person (0.90), dog (0.46)", got)
	})

	t.Run("first three in order", func(t *testing.T) {
		assert.Equal(t, "Detected: obj0 (0.50), obj1 (0.51), obj2 (0.52)", Summarize(labels(3)))
		assert.Equal(t, "Detected: obj0 (0.50), obj1 (0.51), obj2 (0.52)", Summarize(labels(7)))
	})
}
