package adapter

// Adapter represents a runtime adapter for the application
type Adapter interface {
	// Start runs the adapter until it is stopped or fails
	Start() error
}
