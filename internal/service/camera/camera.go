package camera

import (
	"deviceguard/internal/config"
	"deviceguard/internal/logger"
	"deviceguard/internal/service/guard"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is returned when the capture device cannot be opened
// or does not deliver a first frame.
var ErrCameraUnavailable = errors.New("could not open video capture. Make sure a camera is connected and not in use by another application")

// Camera reads frames from a local capture device into a single reused Mat.
type Camera struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	closed  bool
	logger  *logger.Logger
}

// Open opens the configured device, requests the frame size and checks that
// a first frame can be read.
func Open(cfg *config.Config, logger *logger.Logger) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(cfg.CameraDevice)
	if err != nil {
		return nil, errors.Wrapf(ErrCameraUnavailable, "device %d: %v", cfg.CameraDevice, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.FrameWidth))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.FrameHeight))

	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrCameraUnavailable, "device %d", cfg.CameraDevice)
	}

	c := &Camera{
		capture: capture,
		frame:   gocv.NewMat(),
		logger:  logger,
	}

	if ok := capture.Read(&c.frame); !ok || c.frame.Empty() {
		c.Close()
		return nil, errors.Wrapf(ErrCameraUnavailable, "device %d: failed to capture first frame, the camera may be in use by another application", cfg.CameraDevice)
	}

	logger.Info("Camera %d opened at %dx%d", cfg.CameraDevice, c.frame.Cols(), c.frame.Rows())
	return c, nil
}

// Read grabs the next frame. The returned Mat is owned by the Camera and is
// overwritten by the following Read.
func (c *Camera) Read() (*gocv.Mat, error) {
	if c.closed {
		return nil, errors.New("camera is closed")
	}
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, guard.ErrFrameUnavailable
	}
	return &c.frame, nil
}

// Close releases the device and the frame buffer. It is safe to call twice.
func (c *Camera) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.capture.Close()
	if ferr := c.frame.Close(); err == nil {
		err = ferr
	}
	return err
}
