// Package detection turns raw YOLO output rows into labeled pixel-space
// detections: confidence thresholding, box decoding and greedy overlap
// suppression.
package detection

import (
	"fmt"
	"image"
	"sort"

	"deviceguard/internal/dto"
)

// Row layout of a darknet YOLO output: cx, cy, w, h, objectness, class scores...
const (
	rowCenterX = iota
	rowCenterY
	rowWidth
	rowHeight
	rowObjectness
	rowFirstScore
)

// Filter holds the thresholds applied to a frame's raw model output.
type Filter struct {
	ConfidenceMin float64  // A candidate's best class score must be strictly greater
	OverlapMax    float64  // IoU above which the lower-scored box is suppressed
	Labels        []string // Class names indexed by class id
}

type candidate struct {
	classID    int
	confidence float32
	box        image.Rectangle
}

// Apply filters rows (one per predicted box, all output layers concatenated)
// for a frame of the given pixel size. The result is ordered by descending
// confidence.
func (f Filter) Apply(rows [][]float32, width, height int) []dto.DetectionResult {
	candidates := f.threshold(rows, width, height)
	kept := suppress(candidates, f.OverlapMax)

	results := make([]dto.DetectionResult, 0, len(kept))
	for _, c := range kept {
		results = append(results, dto.DetectionResult{
			Label:      f.label(c.classID),
			ClassID:    c.classID,
			Confidence: float64(c.confidence),
			Box:        c.box,
		})
	}
	return results
}

func (f Filter) threshold(rows [][]float32, width, height int) []candidate {
	var candidates []candidate
	for _, row := range rows {
		if len(row) <= rowFirstScore {
			continue
		}
		classID, score := argmax(row[rowFirstScore:])
		if float64(score) <= f.ConfidenceMin {
			continue
		}
		candidates = append(candidates, candidate{
			classID:    classID,
			confidence: score,
			box:        decodeBox(row, width, height),
		})
	}
	return candidates
}

func (f Filter) label(classID int) string {
	if classID >= 0 && classID < len(f.Labels) {
		return f.Labels[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}

// decodeBox converts a normalized center/size encoding to a pixel rectangle.
// Each step truncates toward zero.
func decodeBox(row []float32, width, height int) image.Rectangle {
	centerX := int(row[rowCenterX] * float32(width))
	centerY := int(row[rowCenterY] * float32(height))
	w := int(row[rowWidth] * float32(width))
	h := int(row[rowHeight] * float32(height))
	x := int(float64(centerX) - float64(w)/2)
	y := int(float64(centerY) - float64(h)/2)
	return image.Rect(x, y, x+w, y+h)
}

func argmax(scores []float32) (int, float32) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}

// suppress performs greedy non-maximum suppression. Candidates are visited
// in descending confidence (ties keep input order); a candidate is dropped
// when a box that already survived overlaps it with IoU greater than
// overlapMax. Class ids are not considered.
func suppress(candidates []candidate, overlapMax float64) []candidate {
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].confidence > sorted[j].confidence
	})

	kept := make([]candidate, 0, len(sorted))
	for _, c := range sorted {
		suppressed := false
		for _, k := range kept {
			if IoU(c.box, k.box) > overlapMax {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

// IoU returns the intersection-over-union of two rectangles. Two empty
// rectangles count as a full overlap.
func IoU(a, b image.Rectangle) float64 {
	if area(a)+area(b) == 0 {
		return 1
	}
	inter := area(a.Intersect(b))
	union := area(a) + area(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
