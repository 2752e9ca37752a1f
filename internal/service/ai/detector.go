package ai

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"deviceguard/internal/config"
	"deviceguard/internal/detection"
	"deviceguard/internal/dto"
	"deviceguard/internal/logger"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// ScaleFactor maps 8-bit pixels into [0,1] for the darknet input blob.
	ScaleFactor = 1.0 / 255.0
)

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// DetectorService runs a darknet YOLO network through OpenCV DNN and filters
// its output into labeled detections.
type DetectorService struct {
	net          gocv.Net
	outputLayers []string
	inputSize    image.Point
	filter       detection.Filter
	logger       *logger.Logger
}

// NewDetectorService loads the class names and the network described by files.
// The files must have been verified beforehand.
func NewDetectorService(files config.ModelFiles, cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	labels, err := detection.LoadLabels(files.Names)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(files.Weights, files.Config)
	if net.Empty() {
		return nil, errors.Errorf("failed to load network from %s and %s", files.Weights, files.Config)
	}

	if err := setBackend(&net, cfg.DNNBackend); err != nil {
		net.Close()
		return nil, err
	}

	service := &DetectorService{
		net:          net,
		outputLayers: getOutputLayers(net),
		inputSize:    image.Pt(cfg.InputSize, cfg.InputSize),
		filter: detection.Filter{
			ConfidenceMin: cfg.ConfidenceThreshold,
			OverlapMax:    cfg.NMSThreshold,
			Labels:        labels,
		},
		logger: logger,
	}
	logger.Info("Detection network loaded: %d classes, output layers %s, backend %s",
		len(labels), strings.Join(service.outputLayers, ","), cfg.DNNBackend)
	return service, nil
}

func setBackend(net *gocv.Net, backend string) error {
	b, t := gocv.NetBackendDefault, gocv.NetTargetCPU
	if strings.EqualFold(backend, "cuda") {
		b, t = gocv.NetBackendCUDA, gocv.NetTargetCUDA
	}

	if err := net.SetPreferableBackend(b); err != nil {
		return errors.Wrap(err, "failed to set preferable backend")
	}
	if err := net.SetPreferableTarget(t); err != nil {
		return errors.Wrap(err, "failed to set preferable target")
	}
	return nil
}

// Detect runs one forward pass on frame and returns the surviving detections.
func (s *DetectorService) Detect(frame *gocv.Mat) ([]dto.DetectionResult, error) {
	if frame.Empty() {
		return nil, errors.New("frame is empty")
	}

	blob := gocv.BlobFromImage(*frame, ScaleFactor, s.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	outputs := s.net.ForwardLayers(s.outputLayers)
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	rows, err := outputRows(outputs)
	if err != nil {
		return nil, err
	}

	// rows alias the output Mats, which stay open until Apply returns.
	return s.filter.Apply(rows, frame.Cols(), frame.Rows()), nil
}

// outputRows exposes every output row of every layer as a float slice.
func outputRows(outputs []gocv.Mat) ([][]float32, error) {
	var rows [][]float32
	for _, output := range outputs {
		data, err := output.DataPtrFloat32()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read network output")
		}
		cols := output.Cols()
		for i := 0; i < output.Rows(); i++ {
			rows = append(rows, data[i*cols:(i+1)*cols])
		}
	}
	return rows, nil
}

// Annotate draws each detection's box and label onto frame.
func (s *DetectorService) Annotate(frame *gocv.Mat, detections []dto.DetectionResult) error {
	for _, d := range detections {
		if err := gocv.Rectangle(frame, d.Box, boxColor, 2); err != nil {
			return errors.Wrap(err, "failed to draw rectangle")
		}

		pt := image.Pt(d.Box.Min.X, d.Box.Min.Y+30)
		if err := gocv.PutText(frame, d.Label, pt, gocv.FontHersheyPlain, 2, boxColor, 2); err != nil {
			return errors.Wrap(err, "failed to draw text")
		}
	}
	return nil
}

// Encode returns frame as JPEG bytes.
func (s *DetectorService) Encode(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	defer buf.Close()

	finalImage := make([]byte, buf.Len())
	copy(finalImage, buf.GetBytes())
	return finalImage, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	if !s.net.Empty() {
		return s.net.Close()
	}
	return nil
}

// String describes the loaded model for startup logs.
func (s *DetectorService) String() string {
	return fmt.Sprintf("YOLO %dx%d (%d classes)", s.inputSize.X, s.inputSize.Y, len(s.filter.Labels))
}

func getOutputLayers(net gocv.Net) []string {
	layerNames := net.GetLayerNames()
	unconnectedOutLayers := net.GetUnconnectedOutLayers()

	var outputLayers []string
	for _, i := range unconnectedOutLayers {
		if i-1 >= 0 && i-1 < len(layerNames) {
			outputLayers = append(outputLayers, layerNames[i-1])
		}
	}
	return outputLayers
}
