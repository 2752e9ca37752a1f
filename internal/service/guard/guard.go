// Package guard runs the capture → detect → compare → snapshot loop.
//
// The loop is generic over the frame type F so it can be driven by gocv
// matrices in production and by plain values in tests.
package guard

import (
	"context"
	"strings"
	"time"

	"deviceguard/internal/dto"
	"deviceguard/internal/logger"
	"deviceguard/internal/model"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// ErrFrameUnavailable is returned by a Camera when a single read fails but
// the device is still open. The loop waits and retries.
var ErrFrameUnavailable = errors.New("failed to capture frame")

// Camera yields frames. A returned frame stays valid until the next Read.
type Camera[F any] interface {
	Read() (F, error)
	Close() error
}

// Detector runs inference on a frame.
type Detector[F any] interface {
	Detect(frame F) ([]dto.DetectionResult, error)
}

// Renderer draws detections onto a frame and encodes it for storage.
type Renderer[F any] interface {
	Annotate(frame F, detections []dto.DetectionResult) error
	Encode(frame F) ([]byte, error)
}

// Display presents frames and reports key presses.
type Display[F any] interface {
	Show(frame F) error
	// PollKey returns the key pressed since the last poll, or -1.
	PollKey() int
}

// SnapshotStore persists snapshot events.
type SnapshotStore interface {
	Save(event dto.SnapshotEvent) (string, error)
}

// Options tune the loop.
type Options struct {
	ProcessingInterval int           // Process every Nth acquired frame
	FPSReportEvery     int           // Processed frames per throughput report; 0 disables
	RetryDelay         time.Duration // Pause after a failed read
	QuitKeys           []int
}

// DefaultOptions match the interactive application.
func DefaultOptions() Options {
	return Options{
		ProcessingInterval: 2,
		FPSReportEvery:     30,
		RetryDelay:         time.Second,
		QuitKeys:           []int{'q', 'Q'},
	}
}

// Guard owns the collaborators of the loop. Camera is released when Run returns.
type Guard[F any] struct {
	camera    Camera[F]
	detector  Detector[F]
	renderer  Renderer[F]
	display   Display[F]
	snapshots SnapshotStore
	options   Options
	clock     clock.Clock
	logger    *logger.Logger
}

// New assembles a Guard. A nil clock uses the wall clock.
func New[F any](
	camera Camera[F],
	detector Detector[F],
	renderer Renderer[F],
	display Display[F],
	snapshots SnapshotStore,
	options Options,
	clk clock.Clock,
	logger *logger.Logger,
) *Guard[F] {
	if clk == nil {
		clk = clock.New()
	}
	if options.ProcessingInterval < 1 {
		options.ProcessingInterval = 1
	}
	return &Guard[F]{
		camera:    camera,
		detector:  detector,
		renderer:  renderer,
		display:   display,
		snapshots: snapshots,
		options:   options,
		clock:     clk,
		logger:    logger,
	}
}

// loopState is everything that survives from one iteration to the next.
type loopState struct {
	previous  model.LabelSet
	acquired  int
	processed int
	snapshots int
	meter     *throughputMeter
}

// Stats summarizes a finished run.
type Stats struct {
	Acquired  int // Frames read successfully
	Processed int // Frames passed through detection
	Snapshots int // Snapshot events emitted
}

// Run loops until a quit key is pressed, ctx is cancelled or a non-transient
// error occurs. Quitting is not an error. The camera is closed on every path.
func (g *Guard[F]) Run(ctx context.Context) (stats Stats, err error) {
	defer func() {
		if cerr := g.camera.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to release camera")
		}
		g.logger.Info("Camera released")
	}()

	state := &loopState{meter: newThroughputMeter(g.clock)}
	defer func() {
		stats = Stats{Acquired: state.acquired, Processed: state.processed, Snapshots: state.snapshots}
	}()

	var quit bool
	for {
		if ctx.Err() != nil {
			g.logger.Info("Stopping: %v", ctx.Err())
			return stats, nil
		}

		quit, err = g.step(state)
		if err != nil {
			return stats, err
		}
		if quit {
			g.logger.Info("Quit requested")
			return stats, nil
		}
	}
}

// step runs one iteration and reports whether a quit key was pressed.
func (g *Guard[F]) step(state *loopState) (bool, error) {
	frame, err := g.camera.Read()
	if errors.Is(err, ErrFrameUnavailable) {
		g.logger.Warning("Failed to capture frame. Retrying in %v...", g.options.RetryDelay)
		g.clock.Sleep(g.options.RetryDelay)
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "camera read failed")
	}

	state.acquired++
	state.meter.acquired()
	if state.acquired%g.options.ProcessingInterval != 0 {
		return g.quitPressed(), nil
	}

	if err := g.process(state, frame); err != nil {
		return false, err
	}
	return g.quitPressed(), nil
}

func (g *Guard[F]) process(state *loopState, frame F) error {
	detections, err := g.detector.Detect(frame)
	if err != nil {
		return errors.Wrap(err, "detection failed")
	}
	state.processed++

	if err := g.renderer.Annotate(frame, detections); err != nil {
		return err
	}

	current := model.NewLabelSet(dto.Labels(detections)...)
	if !current.Equal(state.previous) {
		g.snapshot(state, frame, current)
		state.previous = current
	}

	if err := g.display.Show(frame); err != nil {
		return errors.Wrap(err, "failed to show frame")
	}

	if every := g.options.FPSReportEvery; every > 0 && state.processed%every == 0 {
		processedFPS, acquiredFPS := state.meter.report(every)
		g.logger.Info("FPS: %.2f (camera %.2f)", processedFPS, acquiredFPS)
	}
	return nil
}

// snapshot persists the annotated frame. A failed write is logged and the
// loop carries on.
func (g *Guard[F]) snapshot(state *loopState, frame F, current model.LabelSet) {
	data, err := g.renderer.Encode(frame)
	if err != nil {
		g.logger.Error("Failed to encode snapshot: %+v", err)
		return
	}

	event := dto.SnapshotEvent{
		Timestamp: g.clock.Now(),
		Image:     data,
		Previous:  state.previous,
		Current:   current,
	}
	path, err := g.snapshots.Save(event)
	if err != nil {
		g.logger.Error("Failed to save snapshot: %+v", err)
		return
	}

	state.snapshots++
	g.logger.Info("Change detected! Snapshot saved as %s", path)
	g.logger.Info("Previous objects: %s", event.Previous)
	g.logger.Info("Current objects: %s", event.Current)
	if added := current.Added(event.Previous); len(added) > 0 {
		g.logger.Info("Appeared: %s", strings.Join(added, ", "))
	}
	if removed := current.Removed(event.Previous); len(removed) > 0 {
		g.logger.Info("Left: %s", strings.Join(removed, ", "))
	}
}

func (g *Guard[F]) quitPressed() bool {
	key := g.display.PollKey()
	if key < 0 {
		return false
	}
	for _, q := range g.options.QuitKeys {
		if key&0xFF == q {
			return true
		}
	}
	return false
}
