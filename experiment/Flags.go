package experiment

import (
	"flag"
)

// AddFlags registers the experiment command line flags on fs. Parsed
// values are stored directly in cfg, so cfg should hold the defaults
// before AddFlags is called (see NewConfig).
func AddFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed,
		"random number generator seed")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir,
		"path to experiment directories")
	fs.StringVar(&cfg.Experiment, "experiment", cfg.Experiment,
		"experiment name")
	fs.StringVar(&cfg.Dataset, "dataset", cfg.Dataset,
		"dataset name, used in the experiment directory path")
	fs.StringVar(&cfg.Model, "model", cfg.Model,
		"model name, used as the experiment name if none is given")
	fs.BoolVar(&cfg.ResumeTraining, "resume-training", cfg.ResumeTraining,
		"whether to resume training")
	fs.StringVar(&cfg.RestoreFile, "restore-file", cfg.RestoreFile,
		"filename to load checkpoint")
	fs.IntVar(&cfg.ValidInterval, "valid-interval", cfg.ValidInterval,
		"validate every N steps")
	fs.BoolVar(&cfg.NoSave, "no-save", cfg.NoSave,
		"don't save models or checkpoints")
	fs.IntVar(&cfg.SaveInterval, "save-interval", cfg.SaveInterval,
		"save a checkpoint every N steps")
	fs.BoolVar(&cfg.StepCheckpoints, "step-checkpoints", cfg.StepCheckpoints,
		"store all step checkpoints")
	fs.BoolVar(&cfg.NoLog, "no-log", cfg.NoLog,
		"don't save logs to file")
	fs.IntVar(&cfg.LogInterval, "log-interval", cfg.LogInterval,
		"log every N steps")
	fs.BoolVar(&cfg.NoVisual, "no-visual", cfg.NoVisual,
		"don't write plots")
	fs.IntVar(&cfg.VisualInterval, "visual-interval", cfg.VisualInterval,
		"plot every N steps")
	fs.BoolVar(&cfg.NoProgress, "no-progress", cfg.NoProgress,
		"don't use progress bar")
	fs.BoolVar(&cfg.Draft, "draft", cfg.Draft,
		"save experiment results to draft directory")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun,
		"no log, no save, no visualization")
}

// ParseFlags returns a new Config populated from the command line
// arguments args, which should not include the program name.
func ParseFlags(name string, args []string) (*Config, error) {
	cfg := NewConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	AddFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
