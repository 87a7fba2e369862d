package graph

import (
	"testing"
)

func makeNodes() []*Node {
	return []*Node{
		{ID: "tide", Dictionary: "webster", Label: "tide"},
		{ID: "tide", Dictionary: "oxford", Label: "tide"},
		{ID: "anchor", Dictionary: "webster", Label: "anchor"},
	}
}

func TestNewAssignsIndexAndKeys(t *testing.T) {
	g, err := New(makeNodes(), [][2]NodeKey{
		{{ID: "tide", Dictionary: "webster"}, {ID: "anchor", Dictionary: "webster"}},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	for i, n := range g.Nodes {
		if n.Index != i {
			t.Errorf("node %d has index %d", i, n.Index)
		}
	}

	n := g.NodeByKey(NodeKey{ID: "tide", Dictionary: "oxford"})
	if n == nil || n.Dictionary != "oxford" {
		t.Fatalf("lookup by (id, dictionary) failed: %+v", n)
	}

	if g.Degree(g.Nodes[0]) != 1 {
		t.Errorf("degree = %d, want 1", g.Degree(g.Nodes[0]))
	}
	if g.Degree(g.Nodes[1]) != 0 {
		t.Errorf("unlinked node degree = %d", g.Degree(g.Nodes[1]))
	}
}

func TestNewRejectsDuplicateKey(t *testing.T) {
	nodes := makeNodes()
	nodes = append(nodes, &Node{ID: "tide", Dictionary: "webster"})

	if _, err := New(nodes, nil); err == nil {
		t.Fatal("expected duplicate (id, dictionary) error")
	}
}

func TestNewRejectsUnknownLinkEndpoint(t *testing.T) {
	_, err := New(makeNodes(), [][2]NodeKey{
		{{ID: "tide", Dictionary: "webster"}, {ID: "missing", Dictionary: "webster"}},
	})
	if err == nil {
		t.Fatal("expected unknown target error")
	}
}

func TestPinUnpin(t *testing.T) {
	n := &Node{ID: "a"}
	n.Pin(10, 20)
	if !n.Pinned() || n.X != 10 || n.Y != 20 {
		t.Fatalf("pin: %+v", n)
	}
	n.Unpin()
	if n.Pinned() {
		t.Fatal("still pinned after unpin")
	}
}

func TestSeedPositionsDistinct(t *testing.T) {
	g, err := New(makeNodes(), nil)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	g.SeedPositions()

	seen := make(map[[2]float64]bool)
	for _, n := range g.Nodes {
		p := [2]float64{n.X, n.Y}
		if seen[p] {
			t.Fatalf("two nodes seeded at %v", p)
		}
		seen[p] = true
	}
}

func TestParse(t *testing.T) {
	data := []byte(`{
		"nodes": [
			{"id": "mast", "dictionary": "webster", "label": "mast"},
			{"id": "sail", "dictionary": "webster"}
		],
		"links": [
			{"source": "mast", "sourceDictionary": "webster",
			 "target": "sail", "targetDictionary": "webster"}
		]
	}`)

	g, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Links) != 1 {
		t.Fatalf("got %d nodes, %d links", len(g.Nodes), len(g.Links))
	}
	if g.Nodes[1].Label != "sail" {
		t.Errorf("label fallback: got %q", g.Nodes[1].Label)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte(`{"nodes": [{`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDemo(t *testing.T) {
	g := Demo(40, 1)
	if len(g.Nodes) != 40 {
		t.Fatalf("got %d nodes", len(g.Nodes))
	}
	if len(g.Links) == 0 {
		t.Fatal("demo graph has no links")
	}
}
