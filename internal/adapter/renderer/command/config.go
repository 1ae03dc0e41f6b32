package command

import "cartographer/internal/domain/artifact"

type drawSection struct {
	Background   bool `json:"background"`
	Blocks       bool `json:"blocks"`
	Walls        bool `json:"walls"`
	Liquids      bool `json:"liquids"`
	Wires        bool `json:"wires"`
	Paint        bool `json:"paint"`
	MinX         int  `json:"min_x"`
	MinY         int  `json:"min_y"`
	RegionWidth  int  `json:"region_width"`
	RegionHeight int  `json:"region_height"`
}

type pathSection struct {
	FilePath string `json:"file_path"`
}

type deepZoomSection struct {
	Enabled bool `json:"enabled"`
}

// rendererConfig is the document the world renderer reads.
type rendererConfig struct {
	Draw     drawSection     `json:"draw"`
	Output   pathSection     `json:"output"`
	World    pathSection     `json:"world"`
	DeepZoom deepZoomSection `json:"deep_zoom"`
}

func toRendererConfig(cfg artifact.RenderConfig, outputPath string) rendererConfig {
	return rendererConfig{
		Draw: drawSection{
			Background:   cfg.Draw.Background,
			Blocks:       cfg.Draw.Blocks,
			Walls:        cfg.Draw.Walls,
			Liquids:      cfg.Draw.Liquids,
			Wires:        cfg.Draw.Wires,
			Paint:        cfg.Draw.Paint,
			MinX:         cfg.Region.MinX,
			MinY:         cfg.Region.MinY,
			RegionWidth:  cfg.Region.Width,
			RegionHeight: cfg.Region.Height,
		},
		Output:   pathSection{FilePath: outputPath},
		World:    pathSection{FilePath: cfg.WorldPath},
		DeepZoom: deepZoomSection{Enabled: cfg.DeepZoom},
	}
}
