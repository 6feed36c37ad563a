package hardware

import "github.com/pkg/errors"

var (
	ErrNoTarget       = errors.New("no snapshot target")
	ErrSnapshotFormat = errors.New("invalid snapshot")
)

// DescriptorError reports a missing, mistyped or invalid descriptor key.
type DescriptorError struct {
	Path    string
	Key     string
	Message string
}

func (e *DescriptorError) Error() string {
	path := e.Path
	if path == "" {
		path = "descriptor"
	}
	return path + ": " + e.Key + ": " + e.Message
}
