package dto

import "image"

// DetectionResult is one labeled, scored object found in a frame. Box is in
// pixel coordinates of the frame it was detected in.
type DetectionResult struct {
	Label      string
	ClassID    int
	Confidence float64
	Box        image.Rectangle
}

// Labels returns the label of every detection, in order, duplicates included.
func Labels(detections []DetectionResult) []string {
	labels := make([]string, 0, len(detections))
	for _, d := range detections {
		labels = append(labels, d.Label)
	}
	return labels
}
