// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be JSON serialized into configuraiton files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam     Type = "Adam"
	Vanilla  Type = "Vanilla"
	RMSProp  Type = "RMSProp"
	Momentum Type = "Momentum"
)

// Hyper holds the hyperparameters shared by every solver type
type Hyper struct {
	StepSize float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// Rate returns the step size
func (h Hyper) Rate() float64 {
	return h.StepSize
}

// validate returns an error if the step size or batch size is not
// positive
func (h Hyper) validate() error {
	if h.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, have(%v)", h.StepSize)
	}
	if h.Batch <= 0 {
		return fmt.Errorf("batch size must be positive, have(%v)", h.Batch)
	}
	return nil
}

// options returns the Gorgonia solver options common to all solvers
func (h Hyper) options() []G.SolverOpt {
	opts := []G.SolverOpt{
		G.WithLearnRate(h.StepSize),
		G.WithBatchSize(float64(h.Batch)),
	}
	if h.Clip > 0 {
		opts = append(opts, G.WithClip(h.Clip))
	}
	return opts
}

// New returns a new Solver of type t using h and the default values of
// the remaining hyperparameters of t
func New(t Type, h Hyper) (*Solver, error) {
	var c Config
	switch t {
	case Vanilla:
		c = VanillaConfig{Hyper: h}
	case Adam:
		c = AdamConfig{Hyper: h, Epsilon: 1e-8, Beta1: 0.9, Beta2: 0.999}
	case RMSProp:
		c = RMSPropConfig{Hyper: h, Epsilon: 1e-8, Rho: 0.999}
	case Momentum:
		c = MomentumConfig{Hyper: h, Momentum: 0.9}
	default:
		return nil, fmt.Errorf("new: unknown solver type %v", t)
	}
	return FromConfig(c)
}

// FromConfig returns a new Solver described by c
func FromConfig(c Config) (*Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("fromConfig: invalid %v configuration: %v",
			c.Type(), err)
	}
	solver := Solver{Type: c.Type(), Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(Vanilla):  reflect.TypeOf(VanillaConfig{}),
			string(Adam):     reflect.TypeOf(AdamConfig{}),
			string(RMSProp):  reflect.TypeOf(RMSPropConfig{}),
			string(Momentum): reflect.TypeOf(MomentumConfig{}),
		})
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: invalid %v configuration: %v",
			typeName, err)
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("unmarshalConfig: missing field %v",
			typeJsonField)
	}
	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unmarshalConfig: unknown solver type %v",
			typeName)
	}
	value := reflect.New(ty).Interface().(Config)

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// StepSize returns the current step size of the Solver
func (s *Solver) StepSize() float64 {
	return s.Config.Rate()
}

// SetStepSize sets the step size of the Solver. The wrapped Gorgonia
// Solver is recreated, so any running statistics of adaptive solvers
// are reset.
func (s *Solver) SetStepSize(stepSize float64) {
	s.Config = s.Config.WithRate(stepSize)
	s.Solver = s.Config.Create()
}

// StateDict returns the JSON encoded type and configuration of the
// Solver
func (s *Solver) StateDict() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("stateDict: %v", err)
	}
	return data, nil
}

// LoadStateDict restores the type and configuration of the Solver from
// a state dictionary returned by StateDict
func (s *Solver) LoadStateDict(state []byte) error {
	var loaded Solver
	if err := json.Unmarshal(state, &loaded); err != nil {
		return fmt.Errorf("loadStateDict: %v", err)
	}
	*s = loaded
	return nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe. Every Config embeds a Hyper,
// which provides Rate.
type Config interface {
	Create() G.Solver

	// Type returns the type of Solver the Config describes
	Type() Type

	// Rate returns the configured step size
	Rate() float64

	// WithRate returns a copy of the Config with a new step size
	WithRate(float64) Config

	// Validate returns an error if the configuration is illegal
	Validate() error
}

// unit returns an error if v is not in [0, 1)
func unit(name string, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("%v must be in [0, 1), have(%v)", name, v)
	}
	return nil
}
