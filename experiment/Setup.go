package experiment

import (
	mrand "math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Subdirectories of the experiment directory
const (
	DraftSubdir      = "drafts"
	CheckpointSubdir = "checkpoints"
	LogSubdir        = "logs"
	LogFilename      = "train.log"
)

// Setup seeds the global random number generators with the Config's
// seed and creates the experiment directories, recording their paths
// in cfg.
//
// If cfg.DryRun is set, saving, logging, and visualization are all
// disabled and no directories are created. Directories that already
// exist are reused.
func Setup(cfg *Config) error {
	Seed(cfg.Seed)

	if cfg.DryRun {
		cfg.NoSave = true
		cfg.NoLog = true
		cfg.NoVisual = true
		return nil
	}

	name, err := cfg.ExperimentName()
	if err != nil {
		return errors.Wrap(err, "setup")
	}
	cfg.Experiment = name

	dir := filepath.Join(cfg.OutputDir, cfg.Dataset)
	if cfg.Draft {
		dir = filepath.Join(dir, DraftSubdir)
	}
	cfg.ExperimentDir = filepath.Join(dir, cfg.Experiment)
	if err := os.MkdirAll(cfg.ExperimentDir, 0755); err != nil {
		return errors.Wrapf(err, "setup: could not create experiment "+
			"directory %v", cfg.ExperimentDir)
	}

	if !cfg.NoSave {
		cfg.CheckpointDir = filepath.Join(cfg.ExperimentDir, CheckpointSubdir)
		if err := os.MkdirAll(cfg.CheckpointDir, 0755); err != nil {
			return errors.Wrapf(err, "setup: could not create checkpoint "+
				"directory %v", cfg.CheckpointDir)
		}
	}

	if !cfg.NoLog {
		cfg.LogDir = filepath.Join(cfg.ExperimentDir, LogSubdir)
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return errors.Wrapf(err, "setup: could not create log "+
				"directory %v", cfg.LogDir)
		}
		cfg.LogFile = filepath.Join(cfg.LogDir, LogFilename)
	}

	return nil
}

// Seed seeds the global sources of both math/rand and
// golang.org/x/exp/rand. Gorgonia's weight initializers draw from the
// global math/rand source.
func Seed(seed uint64) {
	mrand.Seed(int64(seed))
	rand.Seed(seed)
}
