package dto

import (
	"time"

	"deviceguard/internal/model"
)

// SnapshotEvent is emitted when the label set of a processed frame differs
// from the previous one. Image holds the JPEG-encoded annotated frame.
type SnapshotEvent struct {
	Timestamp time.Time
	Image     []byte
	Previous  model.LabelSet
	Current   model.LabelSet
}
