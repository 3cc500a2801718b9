package utils

import (
	"github.com/pkg/errors"
)

// Graph maps each node to the nodes that must come after it.
type Graph[Key comparable] map[Key][]Key

var ErrCyclicDependencies = errors.New("cyclic dependencies")

// StableTopologicalSortWithSortedKeys orders the nodes of graph so that every
// node precedes its successors. Among nodes that are ready at the same time,
// the order of sortedKeys is kept. sortedKeys must list every node exactly once.
func StableTopologicalSortWithSortedKeys[Key comparable](graph Graph[Key], sortedKeys []Key) ([]Key, error) {
	if len(sortedKeys) != len(graph) {
		return nil, errors.Errorf("wrong sorted keys info: len(sortedKeys) != len(graph): %v != %v", len(sortedKeys), len(graph))
	}

	inDegree := make(map[Key]int, len(graph))
	for _, key := range sortedKeys {
		for _, next := range graph[key] {
			inDegree[next]++
		}
	}

	ready := make([]Key, 0, len(sortedKeys))
	for _, key := range sortedKeys {
		if inDegree[key] == 0 {
			ready = append(ready, key)
		}
	}

	result := make([]Key, 0, len(sortedKeys))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		result = append(result, key)

		for _, next := range graph[key] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(result) != len(graph) {
		return nil, errors.Wrapf(ErrCyclicDependencies, "sorted %v of %v nodes", result, len(graph))
	}

	return result, nil
}
