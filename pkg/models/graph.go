package models

// CentralityRecord holds the per-node centrality measures for one author.
// Closeness is nil when the node is unreachable from the rest of its
// component and the measure is undefined.
type CentralityRecord struct {
	NodeID       string   `json:"node_id"`
	Degree       float64  `json:"degree"`
	Closeness    *float64 `json:"closeness"`
	Betweenness  float64  `json:"betweenness"`
	Eigenvector  float64  `json:"eigenvector"`
	NetworkReach float64  `json:"network_reach"`
}

// Community is a detected cluster of authors
type Community struct {
	ID      int      `json:"id"`
	Size    int      `json:"size"`
	Members []string `json:"members"`
}

// GraphSummary describes one analysis of the follow graph
type GraphSummary struct {
	Nodes               int     `json:"nodes"`
	Edges               int     `json:"edges"`
	DroppedEdges        int     `json:"dropped_edges"`
	Components          int     `json:"components"`
	Communities         int     `json:"communities"`
	Modularity          float64 `json:"modularity"`
	EigenvectorFallback bool    `json:"eigenvector_fallback"`
}
