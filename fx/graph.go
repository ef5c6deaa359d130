// Package fx is the exchange-rate service, spec §4.10: a directed multigraph
// of currency-pair edges, with rate(a,b) resolved by direct lookup or by
// breadth-first search over the edges and their reciprocals.
package fx

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
)

// edge is one from→to = value entry of the multigraph.
type edge struct {
	to    string
	value decimal.Decimal
}

// Graph is a directed multigraph of exchange-rate edges. The zero value is
// ready to use.
type Graph struct {
	edges map[string][]edge
}

// NewGraph builds a Graph from a flat list of from/to/value triples (the
// shape an exchange-rates document deserializes into).
func NewGraph(pairs []Pair) *Graph {
	g := &Graph{edges: map[string][]edge{}}
	for _, p := range pairs {
		g.AddEdge(p.From, p.To, p.Value)
	}
	return g
}

// Pair is one exchange-rate document entry.
type Pair struct {
	From  string
	To    string
	Value decimal.Decimal
}

// AddEdge adds a directed from→to edge. Multiple edges between the same pair
// are kept (the "multigraph" of spec §4.10); Rate always returns the first
// one found along the shortest path.
func (g *Graph) AddEdge(from, to string, value decimal.Decimal) {
	if g.edges == nil {
		g.edges = map[string][]edge{}
	}
	g.edges[from] = append(g.edges[from], edge{to: to, value: value})
}

// Rate resolves the exchange rate from a to b, spec §4.10:
//  1. a direct a→b edge, if one exists;
//  2. else the shortest path over edges and their reciprocals (1/value),
//     with the path's rate the product of its edge values;
//  3. NoExchangeRate if no path connects a to b.
func (g *Graph) Rate(a, b string) (decimal.Decimal, error) {
	if a == b {
		return decimal.NewFromInt(1), nil
	}
	for _, e := range g.edges[a] {
		if e.to == b {
			return e.value, nil
		}
	}

	rate, ok := g.bfs(a, b)
	if !ok {
		return decimal.Decimal{}, amfnerr.New(amfnerr.NoExchangeRate, "no exchange-rate path from %q to %q", a, b)
	}
	return rate, nil
}

// neighbors returns every node reachable in one hop from node, paired with
// the rate that hop multiplies by — both the node's outgoing edges and the
// reciprocal of every edge pointing into it.
func (g *Graph) neighbors(node string) []edge {
	var out []edge
	out = append(out, g.edges[node]...)
	for from, edges := range g.edges {
		for _, e := range edges {
			if e.to == node && from != node {
				out = append(out, edge{to: from, value: decimal.NewFromInt(1).Div(e.value)})
			}
		}
	}
	return out
}

// bfs finds the shortest (fewest-hops) path from start to goal and returns
// the product of its edge rates.
func (g *Graph) bfs(start, goal string) (decimal.Decimal, bool) {
	type frontierEntry struct {
		node string
		rate decimal.Decimal
	}

	visited := map[string]bool{start: true}
	queue := []frontierEntry{{node: start, rate: decimal.NewFromInt(1)}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.neighbors(cur.node) {
			if visited[e.to] {
				continue
			}
			rate := cur.rate.Mul(e.value)
			if e.to == goal {
				return rate, true
			}
			visited[e.to] = true
			queue = append(queue, frontierEntry{node: e.to, rate: rate})
		}
	}
	return decimal.Decimal{}, false
}

// Convert applies Rate(from, to) to amount. It is a thin convenience over
// Rate for the convert() operation of spec §6.
func Convert(g *Graph, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := g.Rate(from, to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}
