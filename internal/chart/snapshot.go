package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

var snapshotBarColor = drawing.ColorFromHex("808080")

// Snapshot renders the behavior panel alone as a static SVG bar chart, for clients
// that cannot run the Vega-Lite runtime. Bars follow the dataset sort order.
func (c *Composer) Snapshot(ds *domain.Dataset, category domain.BehaviorCategory, w io.Writer) error {
	category, err := domain.ParseBehaviorCategory(string(category))
	if err != nil {
		return err
	}
	if ds == nil || len(ds.Features) == 0 {
		return ErrNoDataset
	}

	bars := make([]gochart.Value, 0, len(ds.Features))
	maxValue := 1.0
	for _, agg := range ds.Aggregates() {
		v, err := category.Value(agg)
		if err != nil {
			return err
		}
		label := agg.Sitename
		if agg.ShortName != nil {
			label = *agg.ShortName
		}
		bars = append(bars, gochart.Value{
			Label: label,
			Value: float64(v),
			Style: gochart.Style{FillColor: snapshotBarColor, StrokeColor: snapshotBarColor},
		})
		maxValue = max(maxValue, float64(v))
	}

	barWidth := max(c.cfg.Width/(2*len(bars)), 2)
	bc := gochart.BarChart{
		Title:      "Squirrel Behavior by Park Region: " + category.Title(),
		TitleStyle: gochart.Style{FontSize: float64(c.cfg.TitleFontSize)},
		Width:      max(c.cfg.Width, 2*barWidth*len(bars)+100),
		Height:     c.cfg.Height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.Style{Hidden: true},
		YAxis: gochart.YAxis{
			Name:  "Squirrel Count",
			Range: &gochart.ContinuousRange{Min: 0, Max: maxValue},
		},
		Bars: bars,
	}
	if err := bc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	return nil
}
