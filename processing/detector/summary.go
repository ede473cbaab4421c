package processing

import (
	"strings"

	"camdetect/internal/models"
)

const (
	NothingDetected = "Detected: Nothing"
	summaryLimit    = 3
)

// Summarize lists the first three detections in the order given.
func Summarize(detections []models.Detection) string {
	if len(detections) == 0 {
		return NothingDetected
	}

	n := min(len(detections), summaryLimit)
	parts := make([]string, 0, n)
	for _, d := range detections[:n] {
		parts = append(parts, d.Short())
	}

	return "Detected: " + strings.Join(parts, ", ")
}
