package chart

// Config holds the chart dimensions and typography shared by every panel.
type Config struct {
	Width             int
	Height            int
	TitleFontSize     int
	AxisTitleFontSize int
	LabelFontSize     int
	Legend            LegendConfig
}

// LegendConfig positions the choropleth gradient legend inside the map panel.
type LegendConfig struct {
	Offset         int
	X              int
	Y              int
	GradientLength int
	TitleFontSize  int

	// Settings of the choropleth's own gradient legend.
	MapTitleFontSize int
	LabelFontSize    int
	TickCount        int
}

// DefaultConfig returns the dashboard's layout: four 600x400 panels.
func DefaultConfig() Config {
	return Config{
		Width:             600,
		Height:            400,
		TitleFontSize:     20,
		AxisTitleFontSize: 18,
		LabelFontSize:     16,
		Legend: LegendConfig{
			Offset:         -15,
			X:              10,
			Y:              40,
			GradientLength: 300,
			TitleFontSize:  12,

			MapTitleFontSize: 14,
			LabelFontSize:    16,
			TickCount:        5,
		},
	}
}
