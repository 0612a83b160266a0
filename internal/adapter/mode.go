package adapter

import (
	"os"
	"sync"
)

// Mode represents the runtime mode of the application
type Mode int

const (
	ModeUnknown Mode = iota
	ModeLambda
	ModeHTTPServer
)

var (
	currentMode Mode
	modeOnce    sync.Once
)

// DetectMode determines and caches the runtime mode of the application
func DetectMode() Mode {
	modeOnce.Do(func() {
		currentMode = modeFromEnv(os.Getenv)
	})
	return currentMode
}

// modeFromEnv selects Lambda when the Lambda runtime has set its function
// name, and the standalone HTTP server otherwise.
func modeFromEnv(getenv func(string) string) Mode {
	if getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return ModeLambda
	}
	return ModeHTTPServer
}

// IsLambda returns true if running in AWS Lambda mode
func IsLambda() bool {
	return DetectMode() == ModeLambda
}

// IsHTTPServer returns true if running in HTTP server mode
func IsHTTPServer() bool {
	return DetectMode() == ModeHTTPServer
}

func (m Mode) String() string {
	switch m {
	case ModeLambda:
		return "lambda"
	case ModeHTTPServer:
		return "http-server"
	default:
		return "unknown"
	}
}
