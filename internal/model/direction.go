// Package model implements an online logistic-regression classifier for next-move direction.
package model

import (
	"math"

	"github.com/coachpo/quoter/internal/schema"
)

const (
	// DefaultLearningRate is the SGD step size used when none is configured.
	DefaultLearningRate = 0.01

	weightBound = 10.0
	biasBound   = 100.0
)

// Params is the persisted part of a Direction model.
type Params struct {
	Weights schema.FeatureVector
	Bias    float64
}

// Direction predicts the probability that the next price move is up.
// It is updated with one stochastic gradient step per observation.
type Direction struct {
	weights schema.FeatureVector
	bias    float64
	lr      float64
}

// New returns a zero-initialised model.
func New(learningRate float64) *Direction {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	return &Direction{lr: learningRate}
}

// FromParams rebuilds a model from persisted weights and bias, clipping them into range.
func FromParams(p Params, learningRate float64) *Direction {
	d := New(learningRate)
	d.weights = p.Weights
	d.bias = p.Bias
	d.clip()
	return d
}

// Params returns a copy of the current weights and bias.
func (d *Direction) Params() Params {
	return Params{Weights: d.weights, Bias: d.bias}
}

// PredictProba returns sigmoid(w·x + b), strictly inside (0, 1) for bounded inputs.
func (d *Direction) PredictProba(x schema.FeatureVector) float64 {
	z := d.bias
	for i := range x {
		z += d.weights[i] * x[i]
	}
	return 1 / (1 + math.Exp(-z))
}

// Update applies one gradient step toward label (0 or 1) and clips the parameters.
func (d *Direction) Update(x schema.FeatureVector, label float64) {
	grad := d.lr * (label - d.PredictProba(x))
	for i := range x {
		d.weights[i] += grad * x[i]
	}
	d.bias += grad
	d.clip()
}

func (d *Direction) clip() {
	for i := range d.weights {
		d.weights[i] = clamp(d.weights[i], -weightBound, weightBound)
	}
	d.bias = clamp(d.bias, -biasBound, biasBound)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
