package hgraph

// Analyzer exposes introspection over a built index, used by the
// visualization host to render layer sizes and connectivity without
// reaching into unexported index state. Generalizes coder-hnsw's own
// Analyzer (Height/Connectivity/Topography) from a single hierarchical
// graph to this package's HGraph+RGraph pair.
type Analyzer struct {
	Handle *IndexHandle
}

// Topography returns the vertex count of each HGraph layer, ordered
// [L0, L1, L2].
func (a *Analyzer) Topography() [3]int {
	return [3]int{
		len(a.Handle.layers.l0),
		len(a.Handle.layers.l1),
		len(a.Handle.layers.l2),
	}
}

// HGraphConnectivity returns the average out-degree of each HGraph layer,
// ordered [L0, L1, L2]. A layer's average is computed only over its own
// members, since other vertices have no adjacency in that layer.
func (a *Analyzer) HGraphConnectivity() [3]float64 {
	var out [3]float64
	members := [3][]int32{a.Handle.layers.l0, a.Handle.layers.l1, a.Handle.layers.l2}

	for layer := 0; layer < 3; layer++ {
		verts := members[layer]
		if len(verts) == 0 {
			continue
		}
		var sum int
		for _, v := range verts {
			sum += len(a.Handle.Neighbors(layer, v))
		}
		out[layer] = float64(sum) / float64(len(verts))
	}
	return out
}

// RGraphConnectivity returns the average out-degree over every vertex in
// the RGraph (which spans all of L0).
func (a *Analyzer) RGraphConnectivity() float64 {
	n := a.Handle.Vertices()
	if n == 0 {
		return 0
	}
	var sum int
	for v := int32(0); v < int32(n); v++ {
		sum += len(a.Handle.RGraphNeighbors(v))
	}
	return float64(sum) / float64(n)
}
