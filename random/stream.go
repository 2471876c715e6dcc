// Package random manages named, reproducible pseudo-random number streams
// for stochastic simulation models.
package random

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// A Stream is a named, stateful source of pseudo-random values. Streams are
// not safe for concurrent use by more than one caller.
type Stream interface {
	Name() string
	Next() float64
}

// StreamKind selects the distribution a stream draws from.
type StreamKind string

// The supported distributions. Uniform01 is the base case, returning values
// in [0, 1); the others derive from the stream's underlying generator.
const (
	Uniform01    StreamKind = "uniform01"
	UniformRange StreamKind = "uniform"
	Exponential  StreamKind = "exponential"
	Normal       StreamKind = "normal"
	Triangular   StreamKind = "triangular"
	Constant     StreamKind = "constant"
)

// A StreamSpec describes a stream's distribution. Kind selects the variant;
// the remaining fields parameterize it.
type StreamSpec struct {
	Kind StreamKind `yaml:"kind"`

	// Min, Max bound uniform and triangular streams; Mode is the peak of a
	// triangular stream.
	Min  float64 `yaml:"min,omitempty"`
	Max  float64 `yaml:"max,omitempty"`
	Mode float64 `yaml:"mode,omitempty"`

	// Mean parameterizes exponential and normal streams; Stdev only normal
	// ones.
	Mean  float64 `yaml:"mean,omitempty"`
	Stdev float64 `yaml:"stdev,omitempty"`

	// Values is the cycle a constant stream repeats.
	Values []float64 `yaml:"values,omitempty"`
}

func (s StreamSpec) validate() error {
	switch s.Kind {
	case Uniform01:
		return nil
	case UniformRange:
		if s.Min >= s.Max {
			return fmt.Errorf("uniform stream needs min < max, got [%g, %g)",
				s.Min, s.Max)
		}
	case Exponential:
		if s.Mean <= 0 {
			return fmt.Errorf("exponential stream needs a positive mean, got %g",
				s.Mean)
		}
	case Normal:
		if s.Stdev < 0 {
			return fmt.Errorf("normal stream needs a non-negative stdev, got %g",
				s.Stdev)
		}
	case Triangular:
		if s.Min > s.Mode || s.Mode > s.Max || s.Min >= s.Max {
			return fmt.Errorf(
				"triangular stream needs min <= mode <= max, got (%g, %g, %g)",
				s.Min, s.Mode, s.Max)
		}
	case Constant:
		if len(s.Values) == 0 {
			return errors.New("constant stream needs at least one value")
		}
	default:
		return fmt.Errorf("unknown stream kind %q", s.Kind)
	}

	return nil
}

type stream struct {
	name string
	spec StreamSpec
	rnd  *rand.Rand
	pos  int
}

func (s *stream) Name() string {
	return s.name
}

// Next returns the next value drawn from the stream's distribution.
func (s *stream) Next() float64 {
	switch s.spec.Kind {
	case Uniform01:
		return s.rnd.Float64()
	case UniformRange:
		return s.spec.Min + s.rnd.Float64()*(s.spec.Max-s.spec.Min)
	case Exponential:
		return s.rnd.ExpFloat64() * s.spec.Mean
	case Normal:
		return s.rnd.NormFloat64()*s.spec.Stdev + s.spec.Mean
	case Triangular:
		return s.triangular()
	case Constant:
		v := s.spec.Values[s.pos]
		s.pos = (s.pos + 1) % len(s.spec.Values)
		return v
	default:
		panic("unknown stream kind " + string(s.spec.Kind))
	}
}

func (s *stream) triangular() float64 {
	lo, mode, hi := s.spec.Min, s.spec.Mode, s.spec.Max

	u := s.rnd.Float64()
	cut := (mode - lo) / (hi - lo)
	if u < cut {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}

	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}
