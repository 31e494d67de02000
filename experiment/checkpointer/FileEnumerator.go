package checkpointer

import (
	"fmt"
	"path/filepath"
)

// Checkpoint filenames
const (
	Extension    = ".pt"
	BestFilename = "checkpoint_best" + Extension
	LastFilename = "checkpoint_last" + Extension
)

// StepFilename returns the filename of the checkpoint stored for a
// single step, e.g. checkpoint10.pt
func StepFilename(step int) string {
	return fmt.Sprintf("checkpoint%v%v", step, Extension)
}

// Kind describes which of the checkpoint files a save wrote
type Kind string

const (
	StepKind Kind = "step"
	BestKind Kind = "best"
	LastKind Kind = "last"
)

// path returns the path of the checkpoint file of the given kind in
// dir.
func path(dir string, kind Kind, step int) string {
	switch kind {
	case BestKind:
		return filepath.Join(dir, BestFilename)
	case LastKind:
		return filepath.Join(dir, LastFilename)
	default:
		return filepath.Join(dir, StepFilename(step))
	}
}
