package analyzer

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

const (
	eigenvectorMaxIter = 1000
	eigenvectorTol     = 1e-9
)

// GraphResult is the output of one graph analysis pass.
type GraphResult struct {
	Centrality  map[string]models.CentralityRecord
	Communities []models.Community

	// CommunityOf maps each author to its community id.
	CommunityOf map[string]int

	// Reach in [0, 1] per author, fed back into KOL coverage.
	Reach map[string]float64

	Summary models.GraphSummary
}

type edgeKey struct{ src, dst string }

// AnalyzeGraph builds the weighted follow/mention digraph and computes
// centrality and community structure. Parallel edges are summed into one
// weighted edge; edges referencing unknown authors, self references, and
// non-positive weights are dropped and counted, never errors. Stronger
// ties are treated as shorter paths for the distance-based measures.
func AnalyzeGraph(edges []models.FollowEdge, authors map[string]struct{}, cfg Config) GraphResult {
	weights := make(map[edgeKey]float64)
	dropped := 0
	for _, e := range edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}
		_, okSrc := authors[e.SrcID]
		_, okDst := authors[e.DstID]
		if !okSrc || !okDst || e.SrcID == e.DstID || w < 0 {
			dropped++
			continue
		}
		weights[edgeKey{e.SrcID, e.DstID}] += w
	}

	// Stable author -> node id assignment so every measure is
	// reproducible for a given input.
	ids := make([]string, 0, len(authors))
	for id := range authors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	index := make(map[string]int64, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
	}
	n := len(ids)

	strengthDir := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	costDir := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	strengthUndir := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	costUndir := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, id := range ids {
		strengthDir.AddNode(simple.Node(index[id]))
		costDir.AddNode(simple.Node(index[id]))
		strengthUndir.AddNode(simple.Node(index[id]))
		costUndir.AddNode(simple.Node(index[id]))
	}

	undirWeights := make(map[edgeKey]float64)
	for k, w := range weights {
		f, t := simple.Node(index[k.src]), simple.Node(index[k.dst])
		strengthDir.SetWeightedEdge(simple.WeightedEdge{F: f, T: t, W: w})
		costDir.SetWeightedEdge(simple.WeightedEdge{F: f, T: t, W: 1 / w})

		uk := edgeKey{k.src, k.dst}
		if k.dst < k.src {
			uk = edgeKey{k.dst, k.src}
		}
		undirWeights[uk] += w
	}
	for k, w := range undirWeights {
		f, t := simple.Node(index[k.src]), simple.Node(index[k.dst])
		strengthUndir.SetWeightedEdge(simple.WeightedEdge{F: f, T: t, W: w})
		costUndir.SetWeightedEdge(simple.WeightedEdge{F: f, T: t, W: 1 / w})
	}

	degree := degreeCentrality(strengthDir, ids, index)
	closeness := closenessCentrality(costUndir, ids, index)
	betweenness := map[int64]float64{}
	if len(weights) > 0 {
		betweenness = network.BetweennessWeighted(costDir, path.DijkstraAllPaths(costDir))
	}
	eigen, eigenFallback := eigenvectorCentrality(weights, index, degree, ids)

	maxBetweenness := 0.0
	for _, b := range betweenness {
		if b > maxBetweenness {
			maxBetweenness = b
		}
	}

	centrality := make(map[string]models.CentralityRecord, n)
	reach := make(map[string]float64, n)
	for _, id := range ids {
		nid := index[id]
		rec := models.CentralityRecord{
			NodeID:      id,
			Degree:      degree[nid],
			Closeness:   closeness[nid],
			Betweenness: betweenness[nid],
			Eigenvector: eigen[nid],
		}
		// Normalized betweenness drives reach. Betweenness is only
		// undefined for nodes with no edges, where degree stands in;
		// a connected node missing from the betweenness map was
		// measured at zero and keeps reach zero.
		if degree[nid] == 0 {
			rec.NetworkReach = degree[nid]
		} else if maxBetweenness > 0 {
			rec.NetworkReach = betweenness[nid] / maxBetweenness
		}
		centrality[id] = rec
		reach[id] = rec.NetworkReach
	}

	communities, communityOf, modularity, componentCount := detectCommunities(strengthUndir, ids, cfg.CommunitySeed)

	return GraphResult{
		Centrality:  centrality,
		Communities: communities,
		CommunityOf: communityOf,
		Reach:       reach,
		Summary: models.GraphSummary{
			Nodes:               n,
			Edges:               len(weights),
			DroppedEdges:        dropped,
			Components:          componentCount,
			Communities:         len(communities),
			Modularity:          modularity,
			EigenvectorFallback: eigenFallback,
		},
	}
}

// degreeCentrality counts in plus out neighbors, normalized by n-1.
func degreeCentrality(g *simple.WeightedDirectedGraph, ids []string, index map[string]int64) map[int64]float64 {
	out := make(map[int64]float64, len(ids))
	if len(ids) < 2 {
		for _, id := range ids {
			out[index[id]] = 0
		}
		return out
	}
	norm := float64(len(ids) - 1)
	for _, id := range ids {
		nid := index[id]
		out[nid] = float64(g.From(nid).Len()+g.To(nid).Len()) / norm
	}
	return out
}

// closenessCentrality is computed on the largest weakly connected
// component only. Nodes outside it get nil, which is "undefined", not
// zero; zero would falsely read as measured-and-minimal.
func closenessCentrality(costUndir *simple.WeightedUndirectedGraph, ids []string, index map[string]int64) map[int64]*float64 {
	out := make(map[int64]*float64, len(ids))

	components := topo.ConnectedComponents(costUndir)
	var largest []graph.Node
	largestMin := int64(math.MaxInt64)
	for _, comp := range components {
		min := comp[0].ID()
		for _, nd := range comp {
			if nd.ID() < min {
				min = nd.ID()
			}
		}
		if len(comp) > len(largest) || (len(comp) == len(largest) && min < largestMin) {
			largest, largestMin = comp, min
		}
	}
	if len(largest) < 2 {
		return out
	}

	// Sum distances in a fixed node order so float accumulation is
	// identical across runs.
	members := make([]int64, 0, len(largest))
	for _, nd := range largest {
		members = append(members, nd.ID())
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

	for _, nd := range largest {
		shortest := path.DijkstraFrom(nd, costUndir)
		sum := 0.0
		for _, other := range members {
			if other == nd.ID() {
				continue
			}
			if d := shortest.WeightTo(other); !math.IsInf(d, 1) {
				sum += d
			}
		}
		if sum > 0 {
			c := float64(len(largest)-1) / sum
			out[nd.ID()] = &c
		}
	}
	return out
}

// eigenvectorCentrality runs deterministic power iteration over the
// weighted adjacency. If the iteration cap is hit without convergence it
// falls back to the degree values and reports the fallback, never failing
// the run.
func eigenvectorCentrality(weights map[edgeKey]float64, index map[string]int64, degree map[int64]float64, ids []string) (map[int64]float64, bool) {
	n := len(ids)
	out := make(map[int64]float64, n)
	if n == 0 {
		return out, false
	}
	if len(weights) == 0 {
		for _, id := range ids {
			out[index[id]] = 0
		}
		return out, false
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / math.Sqrt(float64(n))
	}

	converged := false
	for iter := 0; iter < eigenvectorMaxIter; iter++ {
		next := make([]float64, n)
		for k, w := range weights {
			next[index[k.dst]] += w * x[index[k.src]]
		}
		norm := 0.0
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			break
		}
		diff := 0.0
		for i := range next {
			next[i] /= norm
			d := next[i] - x[i]
			diff += d * d
		}
		x = next
		if math.Sqrt(diff) < eigenvectorTol {
			converged = true
			break
		}
	}

	if !converged {
		for _, id := range ids {
			out[index[id]] = degree[index[id]]
		}
		return out, true
	}
	for _, id := range ids {
		out[index[id]] = x[index[id]]
	}
	return out, false
}

// detectCommunities runs Louvain modularity optimization with a seeded
// tie-break source. Identical edges and seed give identical assignments.
func detectCommunities(strengthUndir *simple.WeightedUndirectedGraph, ids []string, seed uint64) ([]models.Community, map[string]int, float64, int) {
	byID := make(map[int64]string, len(ids))
	for i, id := range ids {
		byID[int64(i)] = id
	}

	componentCount := len(topo.ConnectedComponents(strengthUndir))

	if len(ids) == 0 {
		return nil, map[string]int{}, 0, componentCount
	}

	src := rand.NewPCG(seed, seed)
	reduced := community.Modularize(strengthUndir, 1, src)
	groups := reduced.Communities()
	modularity := community.Q(strengthUndir, groups, 1)

	communities := make([]models.Community, 0, len(groups))
	for _, group := range groups {
		members := make([]string, 0, len(group))
		for _, nd := range group {
			members = append(members, byID[nd.ID()])
		}
		sort.Strings(members)
		communities = append(communities, models.Community{Size: len(members), Members: members})
	}
	sort.Slice(communities, func(i, j int) bool {
		if communities[i].Size != communities[j].Size {
			return communities[i].Size > communities[j].Size
		}
		return communities[i].Members[0] < communities[j].Members[0]
	})

	communityOf := make(map[string]int, len(ids))
	for i := range communities {
		communities[i].ID = i
		for _, member := range communities[i].Members {
			communityOf[member] = i
		}
	}
	return communities, communityOf, modularity, componentCount
}
