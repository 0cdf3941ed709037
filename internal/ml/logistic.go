package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// interceptRidge keeps the Newton system solvable when the training set
// holds a single class.
const interceptRidge = 1e-4

const maxHalvings = 30

// LogisticRegression is an L2-regularised logistic regression fitted with
// damped Newton iterations on standardised features.
type LogisticRegression struct {
	C         float64
	MaxIter   int
	Tolerance float64
}

type logisticScorer struct {
	mean, scale []float64
	weights     []float64
	bias        float64
}

func (s *logisticScorer) probability(x []float64) float64 {
	eta := s.bias
	for j, v := range x {
		eta += s.weights[j] * (v - s.mean[j]) / s.scale[j]
	}
	return sigmoid(eta)
}

func (l LogisticRegression) fit(x [][]float64, y []bool) (scorer, error) {
	n := len(x)
	if n == 0 || len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrInsufficientData, n, len(y))
	}
	d := len(x[0])
	k := d + 1

	mean, scale := standardization(x)

	z := mat.NewDense(n, k, nil)
	target := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			z.Set(i, j, (v-mean[j])/scale[j])
		}
		z.Set(i, d, 1)
		if y[i] {
			target.SetVec(i, 1)
		}
	}

	penalty := make([]float64, k)
	for j := 0; j < d; j++ {
		penalty[j] = 1 / l.C
	}
	penalty[d] = interceptRidge

	theta := mat.NewVecDense(k, nil)
	loss := penalisedLoss(z, target, theta, penalty)

	resid := mat.NewVecDense(n, nil)
	wz := mat.NewDense(n, k, nil)
	for iter := 0; iter < l.MaxIter; iter++ {
		var eta mat.VecDense
		eta.MulVec(z, theta)
		for i := 0; i < n; i++ {
			p := sigmoid(eta.AtVec(i))
			resid.SetVec(i, p-target.AtVec(i))
			w := p * (1 - p)
			for j := 0; j < k; j++ {
				wz.Set(i, j, w*z.At(i, j))
			}
		}

		var grad mat.VecDense
		grad.MulVec(z.T(), resid)
		var h mat.Dense
		h.Mul(z.T(), wz)

		hess := mat.NewSymDense(k, nil)
		for a := 0; a < k; a++ {
			grad.SetVec(a, grad.AtVec(a)+penalty[a]*theta.AtVec(a))
			for b := a; b < k; b++ {
				v := h.At(a, b)
				if a == b {
					v += penalty[a]
				}
				hess.SetSym(a, b, v)
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return nil, fmt.Errorf("hessian not positive definite at iteration %d", iter)
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, &grad); err != nil {
			return nil, fmt.Errorf("solve newton step: %w", err)
		}

		t := 1.0
		var next mat.VecDense
		var nextLoss float64
		for halving := 0; ; halving++ {
			next.AddScaledVec(theta, -t, &step)
			nextLoss = penalisedLoss(z, target, &next, penalty)
			if nextLoss <= loss || halving == maxHalvings {
				break
			}
			t /= 2
		}

		theta.CopyVec(&next)
		loss = nextLoss

		if t*maxAbs(&step) < l.Tolerance {
			break
		}
	}

	weights := make([]float64, d)
	for j := range weights {
		weights[j] = theta.AtVec(j)
	}
	return &logisticScorer{
		mean:    mean,
		scale:   scale,
		weights: weights,
		bias:    theta.AtVec(d),
	}, nil
}

// standardization returns per-column mean and standard deviation; constant
// columns get a unit scale.
func standardization(x [][]float64) (mean, scale []float64) {
	d := len(x[0])
	mean = make([]float64, d)
	scale = make([]float64, d)
	col := make([]float64, len(x))
	for j := 0; j < d; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		m, sd := stat.MeanStdDev(col, nil)
		if math.IsNaN(sd) || sd <= 1e-12*math.Max(1, math.Abs(m)) {
			sd = 1
		}
		mean[j], scale[j] = m, sd
	}
	return mean, scale
}

func penalisedLoss(z *mat.Dense, target, theta *mat.VecDense, penalty []float64) float64 {
	var eta mat.VecDense
	eta.MulVec(z, theta)

	var loss float64
	for i := 0; i < eta.Len(); i++ {
		e := eta.AtVec(i)
		loss += softplus(e) - target.AtVec(i)*e
	}
	for j, p := range penalty {
		v := theta.AtVec(j)
		loss += 0.5 * p * v * v
	}
	return loss
}

// softplus is log(1+exp(x)) without overflow.
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func maxAbs(v *mat.VecDense) float64 {
	var m float64
	for i := 0; i < v.Len(); i++ {
		if a := math.Abs(v.AtVec(i)); a > m {
			m = a
		}
	}
	return m
}
