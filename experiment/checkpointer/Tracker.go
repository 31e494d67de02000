package checkpointer

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/exputils/experiment"
	"k8s.io/klog/v2"
)

// Tracker saves and restores checkpoints for an experiment and keeps
// the bookkeeping needed to decide which checkpoint files to write:
// the highest step saved so far and the best score seen so far.
//
// A Tracker should be created once per experiment and used for every
// Save and Load. It is not safe for concurrent use.
type Tracker struct {
	cfg  *experiment.Config
	mode Mode

	lastStep  int
	bestStep  int
	bestScore float64
	improved  bool // Whether any score has improved on the default

	history *History
}

// NewTracker returns a new Tracker which saves checkpoints as
// described by cfg, comparing scores using mode.
func NewTracker(cfg *experiment.Config, mode Mode) (*Tracker, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if !cfg.NoSave && cfg.SaveInterval <= 0 {
		return nil, errors.Errorf("newtracker: save interval must be "+
			"positive, have(%d)", cfg.SaveInterval)
	}

	return &Tracker{
		cfg:       cfg,
		mode:      mode,
		lastStep:  -1,
		bestStep:  -1,
		bestScore: defaultScore(mode),
	}, nil
}

// defaultScore returns the score that every finite score improves on
func defaultScore(mode Mode) float64 {
	if mode == Max {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// UseHistory attaches a History to the Tracker. Each checkpoint file
// written afterwards is recorded in the History.
func (t *Tracker) UseHistory(h *History) {
	t.history = h
}

// Mode returns the comparison mode of the Tracker
func (t *Tracker) Mode() Mode {
	return t.mode
}

// LastStep returns the highest step seen by Save, or -1 if Save has
// not been called.
func (t *Tracker) LastStep() int {
	return t.lastStep
}

// BestStep returns the step at which the best score was seen, or -1
// if no score has been seen.
func (t *Tracker) BestStep() int {
	return t.bestStep
}

// BestScore returns the best score seen so far. Before any score has
// been seen, this is +Inf for Min mode and -Inf for Max mode.
func (t *Tracker) BestScore() float64 {
	return t.bestScore
}

// improves returns whether score is strictly better than the best score
func (t *Tracker) improves(score float64) bool {
	if t.mode == Max {
		return score > t.bestScore
	}
	return score < t.bestScore
}

// Save records that step was reached with the given score and, if
// the step is due for saving, writes a checkpoint of the models,
// optimizers, and schedulers. Save returns the paths of the
// checkpoint files written, which may be none.
//
// Scores are compared using the Mode given to NewTracker; the mode is
// fixed for the lifetime of the Tracker. NaN never improves on the
// best score.
//
// The bookkeeping is always updated, even when no checkpoint is
// written. Files are written when saving is enabled and step is a
// multiple of the save interval:
//
//	checkpoint<step>.pt   if step checkpoints are enabled
//	checkpoint_best.pt    if score improves on the best score
//	checkpoint_last.pt    if step exceeds the previous last step
func (t *Tracker) Save(step int, score float64, models, optimizers,
	schedulers []Stater) ([]string, error) {
	prevLast := t.lastStep
	if step > t.lastStep {
		t.lastStep = step
	}

	improved := t.improves(score)
	if improved {
		t.bestStep = step
		t.bestScore = score
		t.improved = true
	}

	if t.cfg.NoSave || step%t.cfg.SaveInterval != 0 {
		return nil, nil
	}

	var kinds []Kind
	if t.cfg.StepCheckpoints {
		kinds = append(kinds, StepKind)
	}
	if improved {
		kinds = append(kinds, BestKind)
	}
	if step > prevLast {
		kinds = append(kinds, LastKind)
	}
	if len(kinds) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(t.cfg.CheckpointDir, 0755); err != nil {
		return nil, errors.Wrap(err, "save: could not create checkpoint "+
			"directory")
	}

	record, err := t.record(step, score, models, optimizers, schedulers)
	if err != nil {
		return nil, errors.Wrap(err, "save")
	}
	data, err := record.encode()
	if err != nil {
		return nil, errors.Wrap(err, "save")
	}

	written := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		filename := path(t.cfg.CheckpointDir, kind, step)
		if err := writeFile(filename, data); err != nil {
			return written, errors.Wrapf(err, "save: could not write "+
				"checkpoint %v", filename)
		}
		written = append(written, filename)
		klog.V(1).Infof("Saved checkpoint %v (step %v, score %v)",
			filename, step, score)

		if t.history != nil {
			entry := Entry{
				Step:  step,
				Score: score,
				Kind:  kind,
				Path:  filename,
				Time:  time.Now(),
			}
			if err := t.history.Append(entry); err != nil {
				return written, errors.Wrap(err, "save")
			}
		}
		if t.cfg.OnSave != nil {
			t.cfg.OnSave(filename)
		}
	}

	return written, nil
}

// record builds the checkpoint Record for the current state
func (t *Tracker) record(step int, score float64, models, optimizers,
	schedulers []Stater) (*Record, error) {
	r := &Record{
		Step:     step,
		Score:    score,
		LastStep: t.lastStep,
		BestStep: t.bestStep,
		Config:   t.cfg.Snapshot(),
	}
	if t.improved {
		best := t.bestScore
		r.BestScore = &best
	}

	var err error
	if r.Models, err = states(models); err != nil {
		return nil, errors.Wrap(err, "models")
	}
	if r.Optimizers, err = states(optimizers); err != nil {
		return nil, errors.Wrap(err, "optimizers")
	}
	if r.Schedulers, err = states(schedulers); err != nil {
		return nil, errors.Wrap(err, "schedulers")
	}
	return r, nil
}

// Load restores a checkpoint from the Config's restore file. If no
// restore file is set, or it does not name an existing file, Load
// does nothing and returns a nil Record.
//
// Otherwise, the bookkeeping of the Tracker is restored from the
// checkpoint and the saved state is loaded into the given models,
// optimizers, and schedulers, pairing components by position. The
// full decoded Record is returned.
func (t *Tracker) Load(models, optimizers, schedulers []Stater) (*Record,
	error) {
	filename := t.cfg.RestoreFile
	if filename == "" {
		return nil, nil
	}
	if info, err := os.Stat(filename); err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}

	record, err := ReadRecord(filename)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}

	t.lastStep = record.LastStep
	t.bestStep = record.BestStep
	if record.BestScore != nil {
		t.bestScore = *record.BestScore
		t.improved = true
	}

	if err := restore(models, record.Models); err != nil {
		return nil, errors.Wrap(err, "load: models")
	}
	if err := restore(optimizers, record.Optimizers); err != nil {
		return nil, errors.Wrap(err, "load: optimizers")
	}
	if err := restore(schedulers, record.Schedulers); err != nil {
		return nil, errors.Wrap(err, "load: schedulers")
	}

	klog.Infof("Loaded checkpoint %v", filename)
	return record, nil
}
