package graph

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

type nodeJSON struct {
	ID         string `json:"id"`
	Dictionary string `json:"dictionary"`
	Label      string `json:"label"`
}

type linkJSON struct {
	Source           string `json:"source"`
	SourceDictionary string `json:"sourceDictionary"`
	Target           string `json:"target"`
	TargetDictionary string `json:"targetDictionary"`
}

type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Links []linkJSON `json:"links"`
}

// LoadFile reads a graph from a JSON file of nodes and links.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes the JSON wire shape into a Graph.
func Parse(data []byte) (*Graph, error) {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("graph: parse: %w", err)
	}

	nodes := make([]*Node, 0, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		if rn.ID == "" {
			return nil, fmt.Errorf("graph: node with empty id")
		}
		label := rn.Label
		if label == "" {
			label = rn.ID
		}
		nodes = append(nodes, &Node{ID: rn.ID, Dictionary: rn.Dictionary, Label: label})
	}

	links := make([][2]NodeKey, 0, len(raw.Links))
	for _, rl := range raw.Links {
		links = append(links, [2]NodeKey{
			{ID: rl.Source, Dictionary: rl.SourceDictionary},
			{ID: rl.Target, Dictionary: rl.TargetDictionary},
		})
	}

	return New(nodes, links)
}

// Demo generates a small article graph for the built-in viewer: a handful of
// headword clusters with cross-references between them.
func Demo(n int, seed int64) *Graph {
	if n <= 0 {
		n = 60
	}
	rng := rand.New(rand.NewSource(seed))

	dicts := []string{"webster", "oxford", "etym"}
	words := []string{
		"harbor", "anchor", "tide", "mast", "keel", "rudder", "sail", "wharf",
		"current", "compass", "sextant", "latitude", "meridian", "fathom",
		"ballast", "galley", "hull", "bow", "stern", "rigging",
	}

	nodes := make([]*Node, 0, n)
	for i := 0; i < n; i++ {
		w := words[i%len(words)]
		d := dicts[(i/len(words))%len(dicts)]
		id := fmt.Sprintf("%s-%d", w, i)
		nodes = append(nodes, &Node{ID: id, Dictionary: d, Label: w})
	}

	links := make([][2]NodeKey, 0, n)
	for i := 1; i < n; i++ {
		// Attach to an earlier node; bias toward nearby indices so clusters
		// form instead of one star.
		j := i - 1 - rng.Intn(min(i, 6))
		links = append(links, [2]NodeKey{nodes[j].Key(), nodes[i].Key()})
		if rng.Float64() < 0.2 {
			k := rng.Intn(i)
			if k != j {
				links = append(links, [2]NodeKey{nodes[k].Key(), nodes[i].Key()})
			}
		}
	}

	g, err := New(nodes, links)
	if err != nil {
		// Generated keys are unique by construction.
		panic(err)
	}
	return g
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
