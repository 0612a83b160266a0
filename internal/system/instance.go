package system

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateInstanceID generates an ID for this server instance. Journal keys
// carry it so that instances sharing a backend never collide.
func GenerateInstanceID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
}
