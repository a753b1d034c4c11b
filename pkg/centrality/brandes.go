package centrality

import (
	"container/heap"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

type arc struct {
	to int
	w  float64
}

// weightedBetweenness is Brandes' algorithm with Dijkstra searches over step
// weights. Sources are visited in node order and successors in id order, so the
// sums are identical between runs. Weights must be positive.
func weightedBetweenness(dg *simple.WeightedDirectedGraph) []float64 {
	n := dg.Nodes().Len()
	succ := make([][]arc, n)
	for u := 0; u < n; u++ {
		to := graph.NodesOf(dg.From(int64(u)))
		sort.Slice(to, func(i, j int) bool { return to[i].ID() < to[j].ID() })
		for _, v := range to {
			w, _ := dg.Weight(int64(u), v.ID())
			succ[u] = append(succ[u], arc{to: int(v.ID()), w: w})
		}
	}

	scores := make([]float64, n)
	dist := make([]float64, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	reached := make([]bool, n)
	settled := make([]bool, n)
	preds := make([][]int, n)
	order := make([]int, 0, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			dist[i], sigma[i], delta[i] = 0, 0, 0
			reached[i], settled[i] = false, false
			preds[i] = preds[i][:0]
		}
		order = order[:0]

		reached[s] = true
		sigma[s] = 1
		q := &queue{{node: s}}
		for q.Len() > 0 {
			it := heap.Pop(q).(item)
			v := it.node
			if settled[v] {
				continue
			}
			settled[v] = true
			order = append(order, v)

			for _, a := range succ[v] {
				d := dist[v] + a.w
				switch {
				case !reached[a.to] || d < dist[a.to]:
					reached[a.to] = true
					dist[a.to] = d
					sigma[a.to] = sigma[v]
					preds[a.to] = append(preds[a.to][:0], v)
					heap.Push(q, item{node: a.to, dist: d})
				case d == dist[a.to] && !settled[a.to]:
					sigma[a.to] += sigma[v]
					preds[a.to] = append(preds[a.to], v)
				}
			}
		}

		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
	}
	return scores
}

type item struct {
	node int
	dist float64
}

// queue orders by distance, then node
type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(item)) }
func (q *queue) Pop() interface{} {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
