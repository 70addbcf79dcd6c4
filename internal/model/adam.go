package model

import "math"

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates, keyed by parameter name so the moment state survives
// across steps regardless of enumeration order.
type Adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	step    int

	m map[string][]float64
	v map[string][]float64
}

// NewAdam constructs an Adam optimizer with the standard moment decay rates.
func NewAdam(lr float64) *Adam {
	return &Adam{
		lr:      lr,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-8,
		m:       make(map[string][]float64),
		v:       make(map[string][]float64),
	}
}

// Step applies one update to every parameter from its current gradient.
func (opt *Adam) Step(params []Param) {
	opt.step++

	biasCorrection1 := 1 - math.Pow(opt.beta1, float64(opt.step))
	biasCorrection2 := 1 - math.Pow(opt.beta2, float64(opt.step))

	for _, p := range params {
		if opt.m[p.Name] == nil {
			opt.m[p.Name] = make([]float64, len(p.Data))
			opt.v[p.Name] = make([]float64, len(p.Data))
		}
		m := opt.m[p.Name]
		v := opt.v[p.Name]

		for j := range p.Data {
			grad := p.Grad[j]

			m[j] = opt.beta1*m[j] + (1-opt.beta1)*grad
			v[j] = opt.beta2*v[j] + (1-opt.beta2)*grad*grad

			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2

			p.Data[j] -= opt.lr * mHat / (math.Sqrt(vHat) + opt.epsilon)
		}
	}
}

// Reset clears the moment estimates and the step counter.
func (opt *Adam) Reset() {
	opt.step = 0
	opt.m = make(map[string][]float64)
	opt.v = make(map[string][]float64)
}
