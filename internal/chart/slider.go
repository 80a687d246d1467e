package chart

import (
	"math"
	"strconv"

	"github.com/verte-zerg/launchdash/internal/model"
)

// Default payload slider settings.
const (
	DefaultSliderMax  = 10000
	DefaultSliderStep = 1000
	defaultMarkEvery  = 2500
)

// Mark is a labelled slider position.
type Mark struct {
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
}

// Slider describes the payload range control.
type Slider struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Step  float64 `json:"step" yaml:"step"`
	Marks []Mark  `json:"marks" yaml:"marks"`
}

// NewSlider returns a slider from 0 to maxValue with marks every quarter.
// Non-positive arguments fall back to the defaults.
func NewSlider(maxValue, step float64) Slider {
	if maxValue <= 0 {
		maxValue = DefaultSliderMax
	}
	if step <= 0 {
		step = DefaultSliderStep
	}
	markEvery := maxValue / 4
	if maxValue == DefaultSliderMax {
		markEvery = defaultMarkEvery
	}
	s := Slider{Min: 0, Max: maxValue, Step: step}
	for v := 0.0; v <= maxValue+1e-9; v += markEvery {
		s.Marks = append(s.Marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return s
}

// Clamp limits v to the slider bounds.
func (s Slider) Clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Shift moves v by steps slider steps and clamps the result.
func (s Slider) Shift(v float64, steps int) float64 {
	if steps == 0 {
		return s.Clamp(v)
	}
	// Values already beyond the end being moved toward stay put.
	if (steps > 0 && v >= s.Max) || (steps < 0 && v <= s.Min) {
		return v
	}
	var base float64
	if steps > 0 {
		base = math.Floor(v/s.Step) * s.Step
	} else {
		base = math.Ceil(v/s.Step) * s.Step
	}
	base += float64(steps) * s.Step
	return s.Clamp(base)
}

// ShiftLow moves the lower bound of rng, never past the upper bound.
func (s Slider) ShiftLow(rng model.PayloadRange, steps int) model.PayloadRange {
	rng.Low = math.Min(s.Shift(rng.Low, steps), rng.High)
	return rng
}

// ShiftHigh moves the upper bound of rng, never past the lower bound.
func (s Slider) ShiftHigh(rng model.PayloadRange, steps int) model.PayloadRange {
	rng.High = math.Max(s.Shift(rng.High, steps), rng.Low)
	return rng
}
