package mcts

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
)

// WriteGraph dumps the tree rooted at t.root as Graphviz DOT, labeling each
// node with its move, visit count, and Q value. Intended for offline
// inspection of a search tree, not for anything on the training hot path.
func (t *MCTS) WriteGraph(w io.Writer) error {
	g := gographviz.NewGraph()
	if err := g.SetName("mcts"); err != nil {
		return err
	}
	if err := g.SetDir(true); err != nil {
		return err
	}

	var visit func(n naughty) string
	visit = func(n naughty) string {
		node := t.nodeFromNaughty(n)
		name := fmt.Sprintf("n%d", n)
		label := fmt.Sprintf("\"move=%d N=%d Q=%.3f P=%.3f\"", node.Move(), node.Visits(), node.QSA(), node.PSA())
		_ = g.AddNode("mcts", name, map[string]string{"label": label})
		for _, kid := range t.Children(n) {
			childName := visit(kid)
			_ = g.AddEdge(name, childName, true, nil)
		}
		return name
	}
	visit(t.root)

	_, err := io.WriteString(w, g.String())
	return err
}
