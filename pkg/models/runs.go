package models

import "time"

// Analysis run states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunCounters records how much input a run consumed and what it produced.
type RunCounters struct {
	PostsSeen        int `json:"posts_seen"`
	PostsAccepted    int `json:"posts_accepted"`
	Duplicates       int `json:"duplicates"`
	AuthorsScored    int `json:"authors_scored"`
	MemesDetected    int `json:"memes_detected"`
	MemesFiltered    int `json:"memes_filtered"`
	EdgesDropped     int `json:"edges_dropped"`
	GraphNodes       int `json:"graph_nodes"`
	GraphCommunities int `json:"graph_communities"`
}

// AnalysisRun is the persisted metadata for one pipeline execution
type AnalysisRun struct {
	RunID      string      `json:"run_id"`
	Status     string      `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at"`
	Error      *string     `json:"error"`
	Counters   RunCounters `json:"counters"`
}

// AnalysisResult is the full output of one pipeline run.
type AnalysisResult struct {
	Run         AnalysisRun        `json:"run"`
	KOLs        []KOLProfile       `json:"kols"`
	Memes       []MemeCandidate    `json:"memes"`
	Noise       []MemeCandidate    `json:"noise"`
	Centrality  []CentralityRecord `json:"centrality"`
	Communities []Community        `json:"communities"`
	Graph       GraphSummary       `json:"graph"`
}
