package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/tfmv/hgraph"
)

func main() {
	corpus := [][]float32{
		{1, 1, 1},
		{1, -1, 0.999},
		{1, 0, -0.5},
		{0.1, 0.2, 0.3},
		{-1, -1, -1},
		{0.5, 0.5, 0.5},
	}

	index, err := hgraph.BuildIndex(corpus, hgraph.Params{
		M: 2, RMid: 1, RTop: 1, Radius: 1.0, CMax: 3, Seed: 42,
	})
	if err != nil {
		log.Fatalf("failed to build index: %v", err)
	}

	result, err := index.Search([]float32{0.5, 0.5, 0.5})
	if err != nil {
		log.Fatalf("failed to search index: %v", err)
	}
	fmt.Printf("entry vertex: %d\n", result.Entry)
	fmt.Printf("hgraph best: %d (layer 2 log: %v)\n", result.HGraph.Best, result.HGraph.Log[2])
	fmt.Printf("rgraph best: %d (path: %v)\n", result.RGraph.Best, result.RGraph.Path)

	// The index is read-only after BuildIndex returns, so any number of
	// queries may run concurrently over the shared state without locking.
	var wg sync.WaitGroup
	numQueries := 10
	wg.Add(numQueries)
	for i := 0; i < numQueries; i++ {
		go func(i int) {
			defer wg.Done()
			q := []float32{float32(i) * 0.1, float32(i) * 0.1, float32(i) * 0.1}
			res, err := index.Search(q)
			if err != nil {
				log.Printf("search %d error: %v", i, err)
				return
			}
			fmt.Printf("search %d found hgraph best %d\n", i, res.HGraph.Best)
		}(i)
	}
	wg.Wait()

	fmt.Printf("index has %d vertices, %d dimensions\n", index.Vertices(), index.Dimension())
}
