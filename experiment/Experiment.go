// Package experiment implements functionality for configuring and
// setting up an experiment: the experiment Config, the command line
// flags that populate it, and the directory layout that training
// scripts write checkpoints and logs into.
package experiment

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Default values of the Config fields that are not zero valued
const (
	DefaultOutputDir      = "experiments"
	DefaultValidInterval  = 1
	DefaultSaveInterval   = 1
	DefaultLogInterval    = 100
	DefaultVisualInterval = 100
)

// Config represents the configuration of an experiment. A Config is
// built once at startup, completed in place by Setup, and then passed
// by pointer to every other component.
//
// Fields of func type are never serialized, so the snapshot of a
// Config stored in a checkpoint contains only plain settings.
type Config struct {
	Seed           uint64
	OutputDir      string
	Experiment     string // Defaults to Model with '_' replaced by '-'
	Dataset        string
	Model          string
	ResumeTraining bool
	RestoreFile    string

	ValidInterval   int // Validate every N steps
	NoSave          bool
	SaveInterval    int  // Save a checkpoint every N steps
	StepCheckpoints bool // Keep one checkpoint file per saved step
	NoLog           bool
	LogInterval     int
	NoVisual        bool
	VisualInterval  int
	NoProgress      bool
	Draft           bool // Store results under a drafts/ subdirectory
	DryRun          bool // No log, no save, no visualization

	// Paths filled in by Setup
	ExperimentDir string
	CheckpointDir string
	LogDir        string
	LogFile       string

	// Args is the command line that started the experiment
	Args []string

	// OnSave, if set, is called with the path of each checkpoint file
	// after it has been written.
	OnSave func(path string)
}

// NewConfig returns a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputDir:      DefaultOutputDir,
		ValidInterval:  DefaultValidInterval,
		SaveInterval:   DefaultSaveInterval,
		LogInterval:    DefaultLogInterval,
		VisualInterval: DefaultVisualInterval,
	}
}

// Validate returns an error describing whether or not the
// configuration is valid.
func (c *Config) Validate() error {
	intervals := []struct {
		name  string
		value int
	}{
		{"valid interval", c.ValidInterval},
		{"save interval", c.SaveInterval},
		{"log interval", c.LogInterval},
		{"visual interval", c.VisualInterval},
	}

	for _, interval := range intervals {
		if interval.value <= 0 {
			return errors.Errorf("validate: %v must be positive, have(%d)",
				interval.name, interval.value)
		}
	}
	return nil
}

// ExperimentName returns the name of the experiment. If no name was
// given explicitly, the model name is used with underscores replaced
// by dashes.
func (c *Config) ExperimentName() (string, error) {
	if c.Experiment != "" {
		return c.Experiment, nil
	}
	if c.Model == "" {
		return "", errors.New("experimentname: one of experiment or " +
			"model must be set")
	}
	return strings.ReplaceAll(c.Model, "_", "-"), nil
}

// Source returns a new random source seeded with the Config's seed
func (c *Config) Source() rand.Source {
	return rand.NewSource(c.Seed)
}

// Snapshot returns a copy of the Config with all callables removed
func (c *Config) Snapshot() Config {
	snapshot := *c
	snapshot.OnSave = nil
	snapshot.Args = append([]string(nil), c.Args...)
	return snapshot
}

// String implements the fmt.Stringer interface
func (c *Config) String() string {
	return fmt.Sprintf("{Seed:%v OutputDir:%v Experiment:%v Dataset:%v "+
		"Model:%v ResumeTraining:%v RestoreFile:%v ValidInterval:%v "+
		"NoSave:%v SaveInterval:%v StepCheckpoints:%v NoLog:%v "+
		"LogInterval:%v NoVisual:%v VisualInterval:%v NoProgress:%v "+
		"Draft:%v DryRun:%v ExperimentDir:%v CheckpointDir:%v LogDir:%v "+
		"LogFile:%v}",
		c.Seed, c.OutputDir, c.Experiment, c.Dataset, c.Model,
		c.ResumeTraining, c.RestoreFile, c.ValidInterval, c.NoSave,
		c.SaveInterval, c.StepCheckpoints, c.NoLog, c.LogInterval,
		c.NoVisual, c.VisualInterval, c.NoProgress, c.Draft, c.DryRun,
		c.ExperimentDir, c.CheckpointDir, c.LogDir, c.LogFile)
}
