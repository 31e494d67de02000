package analysis

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/exputils/utils/matutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// normEps bounds row norms below when normalizing
	normEps = 1e-12

	// distanceEps is added to row differences before taking their
	// norm
	distanceEps = 1e-6
)

// ErrUndefined is returned by operations whose behaviour has not been
// defined
var ErrUndefined = errors.New("analysis: operation undefined")

// BoolMask returns a len(target) x len(context) matrix whose entry
// (i, j) is true if and only if target[i] == context[j]
func BoolMask(target, context []int) [][]bool {
	mask := make([][]bool, len(target))
	for i, t := range target {
		mask[i] = make([]bool, len(context))
		for j, c := range context {
			mask[i][j] = t == c
		}
	}
	return mask
}

// FloatMask returns BoolMask(target, context) with true stored as 1.0
// and false as 0.0
func FloatMask(target, context []int) *mat.Dense {
	return matutils.Float(BoolMask(target, context))
}

// Connectivity returns the mean distance between the L1 normalized rows
// of mask and graph for each unique label in targetLabels. Row i of
// both matrices is labelled by targetLabels[i].
func Connectivity(mask, graph mat.Matrix,
	targetLabels []int) (map[int]float64, error) {
	mr, mc := mask.Dims()
	gr, gc := graph.Dims()
	if mr != gr || mc != gc {
		return nil, errors.Errorf("connectivity: mask (%v x %v) and graph "+
			"(%v x %v) must have the same shape", mr, mc, gr, gc)
	}
	if len(targetLabels) != mr {
		return nil, errors.Errorf("connectivity: have %v labels for %v rows",
			len(targetLabels), mr)
	}

	normMask := matutils.NormalizeRows(mask, 1, normEps)
	normGraph := matutils.NormalizeRows(graph, 1, normEps)

	diff := make([]float64, mc)
	distances := make(map[int][]float64)
	for i, label := range targetLabels {
		floats.SubTo(diff, normMask.RawRowView(i), normGraph.RawRowView(i))
		floats.AddConst(distanceEps, diff)
		distances[label] = append(distances[label], floats.Norm(diff, 2))
	}

	scores := make(map[int]float64, len(distances))
	for label, d := range distances {
		scores[label] = stat.Mean(d, nil)
	}
	return scores, nil
}

// Labels returns the sorted unique labels of a connectivity score map
func Labels(scores map[int]float64) []int {
	labels := make([]int, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

// Sparsity returns the mean percentage of zero entries per row of
// graph, in [0, 100]. A graph with no entries has NaN sparsity.
func Sparsity(graph mat.Matrix) float64 {
	r, c := graph.Dims()
	if r == 0 || c == 0 {
		return math.NaN()
	}

	zeroFractions := make([]float64, r)
	for i := 0; i < r; i++ {
		zeros := 0
		for j := 0; j < c; j++ {
			if graph.At(i, j) == 0 {
				zeros++
			}
		}
		zeroFractions[i] = float64(zeros) / float64(c)
	}
	return stat.Mean(zeroFractions, nil) * 100
}

// CombineGraphs has no defined behaviour and always returns
// ErrUndefined
func CombineGraphs(g1, g2 mat.Matrix) (*mat.Dense, error) {
	return nil, ErrUndefined
}

// KNNGraph returns the adjacency matrix of the k nearest neighbour
// graph of the rows of x. Entry (i, j) is 1 if row j is one of the k
// rows closest to row i in Euclidean distance, and 0 otherwise. A row
// is never its own neighbour.
func KNNGraph(x mat.Matrix, k int) (*mat.Dense, error) {
	n, _ := x.Dims()
	if k <= 0 || k >= n {
		return nil, errors.Errorf("knnGraph: k must be in [1, %v), have %v",
			n, k)
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}

	graph := mat.NewDense(n, n, nil)
	dist := make([]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range dist {
			dist[j] = floats.Distance(rows[i], rows[j], 2)
			order[j] = j
		}
		dist[i] = math.Inf(1)

		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] < dist[order[b]]
		})
		for _, j := range order[:k] {
			graph.Set(i, j, 1)
		}
	}
	return graph, nil
}
