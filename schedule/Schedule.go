// Package schedule implements learning rate schedules. Each schedule
// counts the steps it has taken, and its state can be saved and
// restored so that a resumed experiment continues the schedule where it
// left off.
package schedule

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Schedule is a learning rate schedule
type Schedule interface {
	// Rate returns the learning rate at the current step
	Rate() float64

	// Step advances the schedule by one step and returns the new rate
	Step() float64

	// Iter returns the number of steps taken
	Iter() int

	StateDict() ([]byte, error)
	LoadStateDict([]byte) error
}

// StepDecay multiplies a base rate by Gamma every Every steps
type StepDecay struct {
	Base  float64
	Gamma float64
	Every int
	Steps int
}

// NewStepDecay returns a new StepDecay schedule
func NewStepDecay(base, gamma float64, every int) (*StepDecay, error) {
	if every <= 0 {
		return nil, errors.Errorf("newStepDecay: every must be positive, "+
			"have %v", every)
	}
	return &StepDecay{Base: base, Gamma: gamma, Every: every}, nil
}

// Rate implements the Schedule interface
func (s *StepDecay) Rate() float64 {
	return s.Base * math.Pow(s.Gamma, float64(s.Steps/s.Every))
}

// Step implements the Schedule interface
func (s *StepDecay) Step() float64 {
	s.Steps++
	return s.Rate()
}

// Iter implements the Schedule interface
func (s *StepDecay) Iter() int {
	return s.Steps
}

// StateDict implements the Schedule interface
func (s *StepDecay) StateDict() ([]byte, error) {
	return stateDict(s)
}

// LoadStateDict implements the Schedule interface
func (s *StepDecay) LoadStateDict(state []byte) error {
	loaded := *s
	if err := loadStateDict(state, &loaded); err != nil {
		return err
	}
	if loaded.Every <= 0 {
		return errors.Errorf("loadStateDict: every must be positive, "+
			"have %v", loaded.Every)
	}
	*s = loaded
	return nil
}

// Exponential multiplies the rate by Gamma every step
type Exponential struct {
	Base  float64
	Gamma float64
	Steps int
}

// NewExponential returns a new Exponential schedule
func NewExponential(base, gamma float64) *Exponential {
	return &Exponential{Base: base, Gamma: gamma}
}

// Rate implements the Schedule interface
func (e *Exponential) Rate() float64 {
	return e.Base * math.Pow(e.Gamma, float64(e.Steps))
}

// Step implements the Schedule interface
func (e *Exponential) Step() float64 {
	e.Steps++
	return e.Rate()
}

// Iter implements the Schedule interface
func (e *Exponential) Iter() int {
	return e.Steps
}

// StateDict implements the Schedule interface
func (e *Exponential) StateDict() ([]byte, error) {
	return stateDict(e)
}

// LoadStateDict implements the Schedule interface
func (e *Exponential) LoadStateDict(state []byte) error {
	return loadStateDict(state, e)
}

// Cosine anneals the rate from Max to Min over Period steps following
// half a cosine wave, and stays at Min afterwards
type Cosine struct {
	Max    float64
	Min    float64
	Period int
	Steps  int
}

// NewCosine returns a new Cosine schedule
func NewCosine(max, min float64, period int) (*Cosine, error) {
	if period <= 0 {
		return nil, errors.Errorf("newCosine: period must be positive, "+
			"have %v", period)
	}
	return &Cosine{Max: max, Min: min, Period: period}, nil
}

// Rate implements the Schedule interface
func (c *Cosine) Rate() float64 {
	t := math.Min(float64(c.Steps), float64(c.Period)) / float64(c.Period)
	return c.Min + 0.5*(c.Max-c.Min)*(1+math.Cos(math.Pi*t))
}

// Step implements the Schedule interface
func (c *Cosine) Step() float64 {
	c.Steps++
	return c.Rate()
}

// Iter implements the Schedule interface
func (c *Cosine) Iter() int {
	return c.Steps
}

// StateDict implements the Schedule interface
func (c *Cosine) StateDict() ([]byte, error) {
	return stateDict(c)
}

// LoadStateDict implements the Schedule interface
func (c *Cosine) LoadStateDict(state []byte) error {
	loaded := *c
	if err := loadStateDict(state, &loaded); err != nil {
		return err
	}
	if loaded.Period <= 0 {
		return errors.Errorf("loadStateDict: period must be positive, "+
			"have %v", loaded.Period)
	}
	*c = loaded
	return nil
}

func stateDict(s Schedule) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "stateDict: could not encode schedule")
	}
	return data, nil
}

func loadStateDict(state []byte, s Schedule) error {
	if err := json.Unmarshal(state, s); err != nil {
		return errors.Wrap(err, "loadStateDict: could not decode schedule")
	}
	return nil
}
