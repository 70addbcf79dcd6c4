package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mode selects the predictor's operating behavior. Dropout is active and
// normalization statistics accumulate only in Train mode; Eval applies the
// frozen running statistics and disables dropout.
type Mode int

const (
	Train Mode = iota
	Eval
)

func (m Mode) String() string {
	if m == Train {
		return "train"
	}
	return "eval"
}

// Param is one named parameter tensor with its gradient, exposed to the
// optimizer. Data and Grad alias the layer's backing storage.
type Param struct {
	Name string
	Data []float64
	Grad []float64
}

type linear struct {
	name    string
	in, out int
	w       *mat.Dense // out × in
	b       []float64
	gradW   *mat.Dense
	gradB   []float64

	x *mat.Dense // input cached for backward
}

func newLinear(name string, in, out int, rng *rand.Rand) *linear {
	scale := 1.0 / math.Sqrt(float64(in))
	w := make([]float64, out*in)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * scale
	}
	return &linear{
		name:  name,
		in:    in,
		out:   out,
		w:     mat.NewDense(out, in, w),
		b:     make([]float64, out),
		gradW: mat.NewDense(out, in, nil),
		gradB: make([]float64, out),
	}
}

func (l *linear) forward(x *mat.Dense) *mat.Dense {
	l.x = x
	rows, _ := x.Dims()
	y := mat.NewDense(rows, l.out, nil)
	y.Mul(x, l.w.T())
	for i := 0; i < rows; i++ {
		floats.Add(y.RawRowView(i), l.b)
	}
	return y
}

func (l *linear) backward(dy *mat.Dense) *mat.Dense {
	rows, _ := dy.Dims()
	l.gradW.Mul(dy.T(), l.x)
	for j := 0; j < l.out; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += dy.At(i, j)
		}
		l.gradB[j] = sum
	}
	dx := mat.NewDense(rows, l.in, nil)
	dx.Mul(dy, l.w)
	return dx
}

func (l *linear) params() []Param {
	return []Param{
		{Name: l.name + ".w", Data: l.w.RawMatrix().Data, Grad: l.gradW.RawMatrix().Data},
		{Name: l.name + ".b", Data: l.b, Grad: l.gradB},
	}
}

// batchNorm normalizes each feature over the batch dimension. Training
// passes normalize with the batch statistics and fold them into the running
// estimates; evaluation passes apply the running estimates frozen.
type batchNorm struct {
	name string
	dim  int

	gamma, beta         []float64
	gradGamma, gradBeta []float64

	runMean, runVar []float64
	momentum, eps   float64

	xhat   *mat.Dense // cached for backward
	invStd []float64
}

func newBatchNorm(name string, dim int) *batchNorm {
	bn := &batchNorm{
		name:      name,
		dim:       dim,
		gamma:     make([]float64, dim),
		beta:      make([]float64, dim),
		gradGamma: make([]float64, dim),
		gradBeta:  make([]float64, dim),
		runMean:   make([]float64, dim),
		runVar:    make([]float64, dim),
		momentum:  0.1,
		eps:       1e-5,
	}
	for i := 0; i < dim; i++ {
		bn.gamma[i] = 1
		bn.runVar[i] = 1
	}
	return bn
}

func (bn *batchNorm) forward(x *mat.Dense, mode Mode) *mat.Dense {
	rows, _ := x.Dims()
	y := mat.NewDense(rows, bn.dim, nil)
	xhat := mat.NewDense(rows, bn.dim, nil)
	invStd := make([]float64, bn.dim)

	for j := 0; j < bn.dim; j++ {
		var mean, variance float64
		if mode == Train {
			for i := 0; i < rows; i++ {
				mean += x.At(i, j)
			}
			mean /= float64(rows)
			for i := 0; i < rows; i++ {
				d := x.At(i, j) - mean
				variance += d * d
			}
			variance /= float64(rows) // biased, used for normalization

			unbiased := variance
			if rows > 1 {
				unbiased = variance * float64(rows) / float64(rows-1)
			}
			bn.runMean[j] = (1-bn.momentum)*bn.runMean[j] + bn.momentum*mean
			bn.runVar[j] = (1-bn.momentum)*bn.runVar[j] + bn.momentum*unbiased
		} else {
			mean = bn.runMean[j]
			variance = bn.runVar[j]
		}

		invStd[j] = 1 / math.Sqrt(variance+bn.eps)
		for i := 0; i < rows; i++ {
			xh := (x.At(i, j) - mean) * invStd[j]
			xhat.Set(i, j, xh)
			y.Set(i, j, bn.gamma[j]*xh+bn.beta[j])
		}
	}

	bn.xhat = xhat
	bn.invStd = invStd
	return y
}

func (bn *batchNorm) backward(dy *mat.Dense) *mat.Dense {
	rows, _ := dy.Dims()
	dx := mat.NewDense(rows, bn.dim, nil)
	n := float64(rows)

	for j := 0; j < bn.dim; j++ {
		var sumDy, sumDyXhat float64
		for i := 0; i < rows; i++ {
			sumDy += dy.At(i, j)
			sumDyXhat += dy.At(i, j) * bn.xhat.At(i, j)
		}
		bn.gradGamma[j] = sumDyXhat
		bn.gradBeta[j] = sumDy

		k := bn.gamma[j] * bn.invStd[j] / n
		for i := 0; i < rows; i++ {
			dx.Set(i, j, k*(n*dy.At(i, j)-sumDy-bn.xhat.At(i, j)*sumDyXhat))
		}
	}
	return dx
}

func (bn *batchNorm) params() []Param {
	return []Param{
		{Name: bn.name + ".gamma", Data: bn.gamma, Grad: bn.gradGamma},
		{Name: bn.name + ".beta", Data: bn.beta, Grad: bn.gradBeta},
	}
}

// state returns the running statistics, persisted alongside the trained
// parameters but never touched by the optimizer.
func (bn *batchNorm) state() []Param {
	return []Param{
		{Name: bn.name + ".run_mean", Data: bn.runMean},
		{Name: bn.name + ".run_var", Data: bn.runVar},
	}
}

// block is one trunk stage: linear → batchnorm → ReLU → dropout.
type block struct {
	lin  *linear
	bn   *batchNorm
	p    float64
	rng  *rand.Rand
	keep []float64 // dropout scale per element, cached for backward
	act  []float64 // ReLU pass-through flags, cached for backward
}

func newBlock(name string, in, out int, p float64, rng *rand.Rand) *block {
	return &block{
		lin: newLinear(name+".lin", in, out, rng),
		bn:  newBatchNorm(name+".bn", out),
		p:   p,
		rng: rng,
	}
}

func (b *block) forward(x *mat.Dense, mode Mode) *mat.Dense {
	y := b.bn.forward(b.lin.forward(x), mode)
	rows, cols := y.Dims()
	data := y.RawMatrix().Data

	b.act = make([]float64, rows*cols)
	for i, v := range data {
		if v > 0 {
			b.act[i] = 1
		} else {
			data[i] = 0
		}
	}

	if mode == Train && b.p > 0 {
		b.keep = make([]float64, rows*cols)
		scale := 1 / (1 - b.p)
		for i := range b.keep {
			if b.rng.Float64() >= b.p {
				b.keep[i] = scale
			}
		}
		for i := range data {
			data[i] *= b.keep[i]
		}
	} else {
		b.keep = nil
	}
	return y
}

func (b *block) backward(dy *mat.Dense) *mat.Dense {
	data := dy.RawMatrix().Data
	if b.keep != nil {
		for i := range data {
			data[i] *= b.keep[i]
		}
	}
	for i := range data {
		data[i] *= b.act[i]
	}
	return b.lin.backward(b.bn.backward(dy))
}

func (b *block) params() []Param {
	return append(b.lin.params(), b.bn.params()...)
}
