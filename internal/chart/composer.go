// Package chart builds the dashboard's linked Vega-Lite chart from a merged dataset.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

// ErrNoDataset is returned when a chart is requested before a dataset is loaded.
var ErrNoDataset = errors.New("no dataset loaded")

const (
	vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

	// SelectionName is the shared zone selection parameter.
	SelectionName = "zone_select"

	// Unit view names the selection is bound to.
	ViewMap      = "map"
	ViewCount    = "count"
	ViewBehavior = "behavior"
	ViewDiff     = "diff"
)

var (
	fieldSitename  = "properties." + domain.PropSitename
	fieldShortName = "properties." + domain.PropShortName
	fieldCount     = "properties." + domain.PropCount
	fieldCountDiff = "properties." + domain.PropCountDiff
)

// Spec is a Vega-Lite document.
type Spec map[string]any

// JSON encodes the spec.
func (s Spec) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// Composer turns a dataset and a behavior category into a chart. It holds no
// per-request state.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer with the given layout.
func NewComposer(cfg Config) *Composer {
	return &Composer{cfg: cfg}
}

// Config returns the layout the composer was built with.
func (c *Composer) Config() Config {
	return c.cfg
}

// Spec builds the 2x2 linked chart: the choropleth and count bar on top, the behavior
// and AM-PM difference bars below. All four views share one zone selection.
func (c *Composer) Spec(ds *domain.Dataset, category domain.BehaviorCategory) (Spec, error) {
	category, err := domain.ParseBehaviorCategory(string(category))
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNoDataset
	}

	sortOrder := ds.SortOrder()
	return Spec{
		"$schema": vegaLiteSchema,
		"data":    map[string]any{"values": ds.FeatureCollection().Features},
		"params": []any{map[string]any{
			"name":   SelectionName,
			"select": map[string]any{"type": "point", "fields": []string{fieldShortName}},
			"views":  []string{ViewMap, ViewCount, ViewBehavior, ViewDiff},
		}},
		"vconcat": []any{
			map[string]any{"hconcat": []any{c.mapPanel(), c.countPanel(sortOrder)}},
			map[string]any{"hconcat": []any{c.behaviorPanel(category, sortOrder), c.diffPanel(sortOrder)}},
		},
		"config": c.config(),
	}, nil
}

func (c *Composer) mapPanel() map[string]any {
	projection := map[string]any{"type": "mercator"}
	return map[string]any{
		"title":  "Central Park Squirrel Distribution: 2018 Census",
		"width":  c.cfg.Width,
		"height": c.cfg.Height,
		"layer": []any{
			map[string]any{
				"mark":       map[string]any{"type": "geoshape", "stroke": "black", "strokeWidth": 1},
				"projection": projection,
			},
			map[string]any{
				"name":       ViewMap,
				"mark":       map[string]any{"type": "geoshape"},
				"projection": projection,
				"encoding": map[string]any{
					"color": map[string]any{
						"condition": map[string]any{
							"param": SelectionName,
							"field": fieldCount,
							"type":  "quantitative",
							"title": []string{"Squirrel", "Count"},
							"scale": map[string]any{"scheme": "greens"},
							"legend": map[string]any{
								"labelFontSize": c.cfg.Legend.LabelFontSize,
								"titleFontSize": c.cfg.Legend.MapTitleFontSize,
								"tickCount":     c.cfg.Legend.TickCount,
							},
						},
						"value": "grey",
					},
					"opacity": selected(0.8, 0.1),
					"tooltip": regionTooltip(fieldCount, "Squirrel Count"),
				},
			},
		},
	}
}

func (c *Composer) countPanel(sortOrder []string) map[string]any {
	return map[string]any{
		"name":   ViewCount,
		"title":  "Squirrel Count by Park Region",
		"width":  c.cfg.Width,
		"height": c.cfg.Height,
		"mark":   "bar",
		"encoding": map[string]any{
			"x": c.regionAxis(sortOrder),
			"y": c.countAxis(fieldCount, "Squirrel Count"),
			"color": map[string]any{
				"field":  fieldCount,
				"type":   "quantitative",
				"scale":  map[string]any{"scheme": "greens"},
				"legend": nil,
			},
			"opacity": selected(1.0, 0.2),
			"tooltip": regionTooltip(fieldCount, "Squirrel Count"),
		},
	}
}

func (c *Composer) behaviorPanel(category domain.BehaviorCategory, sortOrder []string) map[string]any {
	field := "properties." + string(category)
	return map[string]any{
		"name":   ViewBehavior,
		"title":  "Squirrel Behavior by Park Region: " + category.Title(),
		"width":  c.cfg.Width,
		"height": c.cfg.Height,
		"mark":   map[string]any{"type": "bar", "color": "gray"},
		"encoding": map[string]any{
			"x":       c.regionAxis(sortOrder),
			"y":       c.countAxis(field, "Squirrel Count"),
			"opacity": selected(1.0, 0.2),
			"tooltip": regionTooltip(field, "Count "+category.Title()),
		},
	}
}

func (c *Composer) diffPanel(sortOrder []string) map[string]any {
	return map[string]any{
		"name":   ViewDiff,
		"title":  "Squirrel Count by Park Region: AM vs. PM",
		"width":  c.cfg.Width,
		"height": c.cfg.Height,
		"mark":   "bar",
		"encoding": map[string]any{
			"x": c.regionAxis(sortOrder),
			"y": c.countAxis(fieldCountDiff, "Count Difference (AM - PM)"),
			"color": map[string]any{
				"condition": map[string]any{
					"test":  fmt.Sprintf("datum.properties[%q] > 0", domain.PropCountDiff),
					"value": "darkred",
				},
				"value": "steelblue",
			},
			"opacity": selected(1.0, 0.2),
			"tooltip": regionTooltip(fieldCountDiff, "Count difference"),
		},
	}
}

// regionAxis is the shared x encoding: one bar per short name, ordered by count,
// with labels hidden.
func (c *Composer) regionAxis(sortOrder []string) map[string]any {
	return map[string]any{
		"field": fieldShortName,
		"type":  "nominal",
		"sort":  sortOrder,
		"title": "Park Region",
		"axis": map[string]any{
			"ticks":         false,
			"labels":        false,
			"titleFontSize": c.cfg.AxisTitleFontSize,
		},
	}
}

func (c *Composer) countAxis(field, title string) map[string]any {
	return map[string]any{
		"field": field,
		"type":  "quantitative",
		"title": title,
		"axis": map[string]any{
			"labelFontSize": c.cfg.LabelFontSize,
			"titleFontSize": c.cfg.AxisTitleFontSize,
		},
	}
}

func (c *Composer) config() map[string]any {
	return map[string]any{
		"padding": map[string]any{"left": 0, "top": 0, "right": 0, "bottom": 0},
		"view":    map[string]any{"fill": "white"},
		"title":   map[string]any{"fontSize": c.cfg.TitleFontSize, "anchor": "middle"},
		"legend": map[string]any{
			"offset":         c.cfg.Legend.Offset,
			"orient":         "none",
			"legendX":        c.cfg.Legend.X,
			"legendY":        c.cfg.Legend.Y,
			"gradientLength": c.cfg.Legend.GradientLength,
			"titleFontSize":  c.cfg.Legend.TitleFontSize,
		},
	}
}

func selected(in, out float64) map[string]any {
	return map[string]any{
		"condition": map[string]any{"param": SelectionName, "value": in},
		"value":     out,
	}
}

func regionTooltip(field, title string) []any {
	return []any{
		map[string]any{"field": fieldSitename, "type": "nominal", "title": "Park Region"},
		map[string]any{"field": field, "type": "quantitative", "title": title},
	}
}
