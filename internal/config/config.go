package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	YoloDirectory       string
	ResultsDirectory    string
	ModelVariant        Variant // Empty means ask the operator at startup
	CameraDevice        int
	FrameWidth          int
	FrameHeight         int
	InputSize           int     // Square blob size fed to the network
	ConfidenceThreshold float64 // Strictly-greater-than threshold on the best class score
	NMSThreshold        float64 // Maximum IoU before a box is suppressed
	ProcessingInterval  int     // Process every Nth acquired frame (1=every frame, 2=every other)
	FPSReportEvery      int     // Report throughput every N processed frames
	RetryDelay          time.Duration
	DNNBackend          string // "cuda" or "cpu"
	LogDirectory        string
	WindowName          string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is applied first without overriding
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		YoloDirectory:       getEnv("YOLO_DIR", "yolo_files"),
		ResultsDirectory:    getEnv("RESULTS_DIR", defaultResultsDirectory()),
		ModelVariant:        Variant(getEnv("MODEL_VARIANT", "")),
		CameraDevice:        getEnvAsInt("CAMERA_DEVICE", 0),
		FrameWidth:          getEnvAsInt("FRAME_WIDTH", 640),
		FrameHeight:         getEnvAsInt("FRAME_HEIGHT", 480),
		InputSize:           getEnvAsInt("INPUT_SIZE", 416),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		NMSThreshold:        getEnvAsFloat("NMS_THRESHOLD", 0.4),
		ProcessingInterval:  getEnvAsInt("PROCESSING_INTERVAL", 2),
		FPSReportEvery:      getEnvAsInt("FPS_REPORT_EVERY", 30),
		RetryDelay:          getEnvAsDuration("RETRY_DELAY", time.Second),
		DNNBackend:          getEnv("DNN_BACKEND", "cuda"),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		WindowName:          getEnv("WINDOW_NAME", "Object Detection"),
	}
}

// defaultResultsDirectory puts snapshots under the user's Downloads folder,
// falling back to the working directory when there is no home directory.
func defaultResultsDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "object_detection_results")
	}
	return filepath.Join(home, "Downloads", "object_detection_results")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
