package camera

import (
	"gocv.io/x/gocv"
)

// Window is the live preview and the source of key presses.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a preview window with the given title.
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name)}
}

// Show draws frame in the window.
func (w *Window) Show(frame *gocv.Mat) error {
	w.window.IMShow(*frame)
	return nil
}

// PollKey waits 1ms for a key press and returns its low byte, or -1.
func (w *Window) PollKey() int {
	key := w.window.WaitKey(1)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
