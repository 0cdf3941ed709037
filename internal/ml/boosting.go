package ml

import (
	"fmt"
	"math"
)

// priorClamp bounds the initial class prior away from 0 and 1 so a
// single-class training set still yields a finite log-odds.
const priorClamp = 1e-7

// GradientBoosting is a binary log-loss gradient boosted ensemble of
// shallow regression trees with Newton leaf updates.
type GradientBoosting struct {
	Estimators     int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
}

type boostedScorer struct {
	init         float64
	learningRate float64
	trees        []regressionTree
}

func (s *boostedScorer) probability(x []float64) float64 {
	f := s.init
	for i := range s.trees {
		f += s.learningRate * s.trees[i].predict(x)
	}
	return sigmoid(f)
}

func (g GradientBoosting) fit(x [][]float64, y []bool) (scorer, error) {
	n := len(x)
	if n == 0 || len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrInsufficientData, n, len(y))
	}

	target := make([]float64, n)
	var pos float64
	for i, up := range y {
		if up {
			target[i] = 1
			pos++
		}
	}
	prior := math.Min(math.Max(pos/float64(n), priorClamp), 1-priorClamp)
	init := math.Log(prior / (1 - prior))

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = init
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	residual := make([]float64, n)
	hessian := make([]float64, n)
	trees := make([]regressionTree, 0, g.Estimators)
	for m := 0; m < g.Estimators; m++ {
		for i := range raw {
			p := sigmoid(raw[i])
			residual[i] = target[i] - p
			hessian[i] = p * (1 - p)
		}

		tree := growTree(x, residual, hessian, all, g.MaxDepth, g.MinSamplesLeaf)
		for i := range raw {
			raw[i] += g.LearningRate * tree.predict(x[i])
		}
		trees = append(trees, tree)
	}

	return &boostedScorer{
		init:         init,
		learningRate: g.LearningRate,
		trees:        trees,
	}, nil
}
