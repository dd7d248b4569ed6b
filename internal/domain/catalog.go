package domain

// Catalog enumerates the option values a client may send.
type Catalog struct {
	Presets           []string           `json:"presets"`
	ColorModes        []ColorMode        `json:"color_modes"`
	HierarchicalModes []HierarchicalMode `json:"hierarchical_modes"`
	CurveModes        []CurveMode        `json:"curve_modes"`
	Defaults          Options            `json:"defaults"`
}

// ModelCatalog returns a fresh copy of the option catalog.
func ModelCatalog() Catalog {
	return Catalog{
		Presets:           []string{PresetBW, PresetPoster, PresetPhoto},
		ColorModes:        []ColorMode{ColorModeColor, ColorModeBW},
		HierarchicalModes: []HierarchicalMode{HierarchicalStacked, HierarchicalCutout},
		CurveModes:        []CurveMode{CurveModePixel, CurveModePolygon, CurveModeSpline},
		Defaults:          DefaultOptions(),
	}
}
