package ml

import (
	"math"
	"sort"
)

// minImpurity is the residual variance below which a node is not split.
const minImpurity = 1e-14

type treeNode struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
	leaf        bool
}

// regressionTree is a binary tree stored as a flat node slice; node 0 is the root.
type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// growTree fits a least-squares tree to residual over the samples in idx.
// Leaves hold the Newton step sum(residual)/sum(hessian).
func growTree(x [][]float64, residual, hessian []float64, idx []int, maxDepth, minLeaf int) regressionTree {
	t := regressionTree{}
	t.build(x, residual, hessian, idx, 0, maxDepth, minLeaf)
	return t
}

func (t *regressionTree) build(x [][]float64, residual, hessian []float64, idx []int, depth, maxDepth, minLeaf int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{})

	if depth < maxDepth && len(idx) >= 2*minLeaf && variance(residual, idx) > minImpurity {
		if s, ok := bestSplit(x, residual, idx, minLeaf); ok {
			left, right := partition(x, idx, s.feature, s.threshold)
			l := t.build(x, residual, hessian, left, depth+1, maxDepth, minLeaf)
			r := t.build(x, residual, hessian, right, depth+1, maxDepth, minLeaf)
			t.nodes[id] = treeNode{feature: s.feature, threshold: s.threshold, left: l, right: r}
			return id
		}
	}

	t.nodes[id] = treeNode{leaf: true, value: newtonStep(residual, hessian, idx)}
	return id
}

type split struct {
	feature     int
	threshold   float64
	improvement float64
}

// bestSplit scans every feature for the threshold with the largest
// squared-error reduction n_l*n_r/n * (mean_l - mean_r)^2.
func bestSplit(x [][]float64, residual []float64, idx []int, minLeaf int) (split, bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += residual[i]
	}

	best := split{improvement: 0}
	found := false
	order := make([]int, n)
	for f := 0; f < len(x[idx[0]]); f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		var leftSum float64
		for k := 1; k < n; k++ {
			leftSum += residual[order[k-1]]
			lo, hi := x[order[k-1]][f], x[order[k]][f]
			if k < minLeaf || n-k < minLeaf || lo >= hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			diff := leftSum/nl - (total-leftSum)/nr
			imp := nl * nr / float64(n) * diff * diff
			if imp > best.improvement {
				th := lo + (hi-lo)/2
				if th >= hi {
					th = lo
				}
				best = split{feature: f, threshold: th, improvement: imp}
				found = true
			}
		}
	}
	return best, found
}

func partition(x [][]float64, idx []int, feature int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func variance(v []float64, idx []int) float64 {
	var sum, sq float64
	for _, i := range idx {
		sum += v[i]
		sq += v[i] * v[i]
	}
	n := float64(len(idx))
	mean := sum / n
	return math.Max(sq/n-mean*mean, 0)
}

func newtonStep(residual, hessian []float64, idx []int) float64 {
	var num, den float64
	for _, i := range idx {
		num += residual[i]
		den += hessian[i]
	}
	if math.Abs(den) < 1e-150 {
		return 0
	}
	return num / den
}
