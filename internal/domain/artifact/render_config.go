package artifact

type DrawLayers struct {
	Background bool
	Blocks     bool
	Walls      bool
	Liquids    bool
	Wires      bool
	Paint      bool
}

// Region selects part of the world. A zero width or height means the whole world.
type Region struct {
	MinX   int
	MinY   int
	Width  int
	Height int
}

func (r Region) WholeWorld() bool {
	return r.Width <= 0 || r.Height <= 0
}

type RenderConfig struct {
	Draw       DrawLayers
	Region     Region
	OutputPath string
	WorldPath  string
	DeepZoom   bool
}

func AllLayers() DrawLayers {
	return DrawLayers{
		Background: true,
		Blocks:     true,
		Walls:      true,
		Liquids:    true,
		Wires:      true,
		Paint:      true,
	}
}

func DefaultRenderConfig(p Paths) RenderConfig {
	return RenderConfig{
		Draw:       AllLayers(),
		OutputPath: p.BaseMap,
		WorldPath:  p.WorldSave,
	}
}
