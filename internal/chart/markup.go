package chart

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8"/>
  <title>{{.Title}}</title>
  <script src="https://cdn.jsdelivr.net/npm/vega@5"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-lite@5"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-embed@6"></script>
  <style>body { margin: 0; background: white; }</style>
</head>
<body>
  <div id="vis"></div>
  <script type="text/javascript">
    vegaEmbed("#vis", {{.Spec}}, {"mode": "vega-lite", "actions": false}).catch(console.error);
  </script>
</body>
</html>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8"/>
  <title>Central Park Squirrel Census</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 0; }
    .app-side-panel { width: 15%; display: inline-block; vertical-align: top; padding: 10px; box-sizing: border-box; }
    .app-graphs { width: 84%; display: inline-block; }
    .app-graph-notes-red { color: darkred; }
    .app-graph-notes-blue { color: steelblue; }
    .app-footer { padding: 10px; font-size: 0.9em; }
    iframe { border-width: 0; }
  </style>
</head>
<body>
  <div class="app-side-panel">
    <img src="https://i.ibb.co/F78bQB2/logo-2.png" width="200" alt="Squirrel census logo"/>
    <h5>Guide your observance of the famous squirrels of Central Park, NY</h5>
    <ul class="app-panel-list">
      <li>Hover over any chart value to see details</li>
      <li>Click a region on any chart to highlight across all charts</li>
      <li>Shift + click to select multiple regions at once</li>
    </ul>
    <h4>Select a Behavior to Display:</h4>
    <select id="dd-chart">
      {{- range .Options}}
      <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
      {{- end}}
    </select>
  </div>
  <div class="app-graphs">
    <iframe id="plot" sandbox="allow-scripts" height="{{.FrameHeight}}" width="{{.FrameWidth}}" src="{{.ChartURL}}"></iframe>
    <div class="app-graph-notes-red"><p>* Red indicates more squirrels in the morning.</p></div>
    <div class="app-graph-notes-blue"><p>* Blue indicates more squirrels in the afternoon</p></div>
  </div>
  <div class="app-footer">
    <h4>Sources:</h4>
    <ul>
      <li><a href="https://www.thesquirrelcensus.com/">The Central Park Squirrel Census</a></li>
      <li><a href="https://data.cityofnewyork.us/Environment/2018-Central-Park-Squirrel-Census-Squirrel-Data/vfnx-vebw">NYC OpenData</a></li>
    </ul>
  </div>
  <script type="text/javascript">
    document.getElementById("dd-chart").addEventListener("change", function (e) {
      document.getElementById("plot").src = {{.ChartPath}} + "?behavior=" + encodeURIComponent(e.target.value);
    });
  </script>
</body>
</html>
`))

type option struct {
	Value    domain.BehaviorCategory
	Label    string
	Selected bool
}

// Render produces a standalone HTML document that embeds the chart for the category.
// It is safe to call concurrently and does not modify the dataset.
func (c *Composer) Render(ds *domain.Dataset, category domain.BehaviorCategory) ([]byte, error) {
	spec, err := c.Spec(ds, category)
	if err != nil {
		return nil, err
	}
	js, err := spec.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}

	data := struct {
		Title string
		Spec  template.JS
	}{
		Title: "Squirrel Behavior by Park Region: " + category.Title(),
		Spec:  template.JS(js),
	}

	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Page renders the dashboard shell: the side panel with the behavior dropdown and an
// iframe that loads chartPath for the selected category.
func (c *Composer) Page(category domain.BehaviorCategory, chartPath string) ([]byte, error) {
	category, err := domain.ParseBehaviorCategory(string(category))
	if err != nil {
		return nil, err
	}

	var opts []option
	for _, cat := range domain.Categories() {
		opts = append(opts, option{Value: cat, Label: cat.Label(), Selected: cat == category})
	}

	data := struct {
		Options     []option
		ChartPath   string
		ChartURL    string
		FrameWidth  int
		FrameHeight int
	}{
		Options:   opts,
		ChartPath: chartPath,
		ChartURL:  chartPath + "?behavior=" + string(category),
		// Two panels per row plus the legend gutter.
		FrameWidth:  2*c.cfg.Width + 200,
		FrameHeight: 2*c.cfg.Height + 155,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
