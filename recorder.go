package l2cache

// Recorder receives accessor events. See the metrics package for a Prometheus implementation.
// Implementations must be thread-safe.
type Recorder interface {
	// Hit records n keys served from the store.
	Hit(region string, n int)
	// Miss records n keys not found in the store.
	Miss(region string, n int)
	// Load records a call to the backing store loader.
	Load(region string, err error)
	// Shared records a caller that received the result of another caller's in-flight load.
	Shared(region string)
	// StoreFailure records a failed store operation.
	StoreFailure(region, op string)
}

// NopRecorder records nothing. It is the default recorder.
type NopRecorder struct{}

func (NopRecorder) Hit(string, int)             {}
func (NopRecorder) Miss(string, int)            {}
func (NopRecorder) Load(string, error)          {}
func (NopRecorder) Shared(string)               {}
func (NopRecorder) StoreFailure(string, string) {}
