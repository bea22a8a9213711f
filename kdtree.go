package bayesspace

import (
	"container/heap"
	"math"
	"sort"
)

// kdNode describes one node of a KDTree: the points idxArray[start:end].
type kdNode struct {
	start, end int
	leaf       bool
}

// KDTree is a KD-tree over spot coordinates, used to build neighbor graphs
// without comparing every pair of spots. Points are stored flat and
// row-major and reordered through an index permutation.
//
// The tree is a complete binary tree in array form: node i has children
// 2i+1 and 2i+2, and its bounding box is stored per dimension in
// boundsMin/boundsMax.
type KDTree struct {
	data      []float64
	n, dims   int
	leafSize  int
	metric    DistanceMetric
	idxArray  []int // tree-order position → original index
	nodes     []kdNode
	boundsMin []float64 // boundsMin[node*dims + j]
	boundsMax []float64
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimension dims. leafSize bounds the number of points per leaf.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	leafSize = max(leafSize, 1)

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}
	maxNodes := kdMaxNodes(n, leafSize)

	t := &KDTree{
		data:      append([]float64(nil), data...),
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]kdNode, maxNodes),
		boundsMin: make([]float64, maxNodes*dims),
		boundsMax: make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.build(0, 0, n)
	}
	return t
}

// kdMaxNodes returns the node count of a complete binary tree deep enough to
// hold n points in leaves of leafSize.
func kdMaxNodes(n, leafSize int) int {
	leaves := max((n+leafSize-1)/leafSize, 1)
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	// Median splits can leave one side a leaf deeper than the balanced bound.
	return (1 << (depth + 2)) - 1
}

// NumPoints returns the number of indexed points.
func (t *KDTree) NumPoints() int { return t.n }

// point returns the coordinates of original point i.
func (t *KDTree) point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

func (t *KDTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.boundsMin = append(t.boundsMin, make([]float64, t.dims)...)
		t.boundsMax = append(t.boundsMax, make([]float64, t.dims)...)
	}

	base := node * t.dims
	for j := 0; j < t.dims; j++ {
		t.boundsMin[base+j] = math.Inf(1)
		t.boundsMax[base+j] = math.Inf(-1)
	}
	for _, p := range t.idxArray[start:end] {
		for j, v := range t.point(p) {
			t.boundsMin[base+j] = math.Min(t.boundsMin[base+j], v)
			t.boundsMax[base+j] = math.Max(t.boundsMax[base+j], v)
		}
	}

	if end-start <= t.leafSize {
		t.nodes[node] = kdNode{start: start, end: end, leaf: true}
		return
	}

	// Split on the widest dimension at the median.
	split, spread := 0, -1.0
	for j := 0; j < t.dims; j++ {
		if s := t.boundsMax[base+j] - t.boundsMin[base+j]; s > spread {
			split, spread = j, s
		}
	}
	sub := t.idxArray[start:end]
	sort.SliceStable(sub, func(a, b int) bool {
		return t.data[sub[a]*t.dims+split] < t.data[sub[b]*t.dims+split]
	})
	mid := start + (end-start)/2

	t.nodes[node] = kdNode{start: start, end: end}
	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

// minRdist returns a lower bound, in reduced-distance space, on the distance
// from query to any point in node: the distance to the closest point of the
// node's bounding box.
func (t *KDTree) minRdist(node int, query, scratch []float64) float64 {
	base := node * t.dims
	for j, q := range query {
		scratch[j] = math.Min(math.Max(q, t.boundsMin[base+j]), t.boundsMax[base+j])
	}
	return t.metric.ReducedDistance(query, scratch)
}

// QueryRadius returns the original indices of every point within radius of
// query (inclusive), in ascending index order.
func (t *KDTree) QueryRadius(query []float64, radius float64) []int {
	if t.n == 0 {
		return nil
	}
	var found []int
	scratch := make([]float64, t.dims)
	t.radiusSearch(0, query, t.metric.DistToRdist(radius), scratch, &found)
	sort.Ints(found)
	return found
}

func (t *KDTree) radiusSearch(node int, query []float64, rRadius float64, scratch []float64, found *[]int) {
	if t.minRdist(node, query, scratch) > rRadius {
		return
	}
	nd := t.nodes[node]
	if nd.leaf {
		for _, p := range t.idxArray[nd.start:nd.end] {
			if t.metric.ReducedDistance(query, t.point(p)) <= rRadius {
				*found = append(*found, p)
			}
		}
		return
	}
	t.radiusSearch(2*node+1, query, rRadius, scratch, found)
	t.radiusSearch(2*node+2, query, rRadius, scratch, found)
}

// QueryKNN returns the original indices and distances of the k points
// nearest to query, sorted by distance. Ties are broken by index.
func (t *KDTree) QueryKNN(query []float64, k int) ([]int, []float64) {
	if t.n == 0 || k <= 0 {
		return nil, nil
	}
	h := &knnHeap{}
	scratch := make([]float64, t.dims)
	t.knnSearch(0, query, k, scratch, h)

	idx := make([]int, h.Len())
	dist := make([]float64, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		item := heap.Pop(h).(knnItem)
		idx[i] = item.index
		dist[i] = t.metric.Distance(query, t.point(item.index))
	}
	return idx, dist
}

func (t *KDTree) knnSearch(node int, query []float64, k int, scratch []float64, h *knnHeap) {
	nd := t.nodes[node]
	if nd.leaf {
		for _, p := range t.idxArray[nd.start:nd.end] {
			item := knnItem{index: p, rdist: t.metric.ReducedDistance(query, t.point(p))}
			if h.Len() < k {
				heap.Push(h, item)
			} else if item.before((*h)[0]) {
				(*h)[0] = item
				heap.Fix(h, 0)
			}
		}
		return
	}

	// Visit the nearer child first so the far one is more often pruned.
	near, far := 2*node+1, 2*node+2
	nearR, farR := t.minRdist(near, query, scratch), t.minRdist(far, query, scratch)
	if farR < nearR {
		near, far = far, near
		farR = nearR
	}
	t.knnSearch(near, query, k, scratch, h)
	if h.Len() < k || farR <= (*h)[0].rdist {
		t.knnSearch(far, query, k, scratch, h)
	}
}

type knnItem struct {
	index int
	rdist float64
}

// before orders items by reduced distance, then by index.
func (a knnItem) before(b knnItem) bool {
	if a.rdist != b.rdist {
		return a.rdist < b.rdist
	}
	return a.index < b.index
}

// knnHeap is a max-heap (worst item on top) bounding a KNN query.
type knnHeap []knnItem

func (h knnHeap) Len() int           { return len(h) }
func (h knnHeap) Less(i, j int) bool { return h[j].before(h[i]) }
func (h knnHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x any)        { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() any {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}
