package status

import "time"

type Request struct {
	RecentLimit int
}

type ArtifactStatus struct {
	Path    string    `json:"path"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

type RunView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Succeeded   bool      `json:"succeeded"`
	Error       string    `json:"error,omitempty"`
	SourceMTime time.Time `json:"source_mtime,omitempty"`
}

type Response struct {
	WorldSave    ArtifactStatus `json:"world_save"`
	BaseMap      ArtifactStatus `json:"base_map"`
	Overlay      ArtifactStatus `json:"overlay"`
	Served       ArtifactStatus `json:"served"`
	BaseMapFresh bool           `json:"base_map_fresh"`
	RecentRuns   []RunView      `json:"recent_runs"`
	Metrics      any            `json:"metrics,omitempty"`
}
