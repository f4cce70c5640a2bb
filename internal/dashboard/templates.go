package dashboard

import (
	"fmt"
	"html/template"
)

var funcs = template.FuncMap{
	"reading": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var pages = template.Must(template.New("pages").Funcs(funcs).Parse(pageTemplates))

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Smart Irrigation System</title>
<style>
  body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #262730; display: flex; min-height: 100vh; }
  nav { width: 220px; background: #f0f2f6; padding: 24px 16px; box-sizing: border-box; }
  nav h2 { font-size: 1.1rem; margin: 0 0 16px; }
  nav a { display: block; padding: 8px 10px; border-radius: 6px; color: #262730; text-decoration: none; margin-bottom: 4px; }
  nav a.active { background: #ffffff; font-weight: 600; }
  nav form { margin-top: 24px; }
  main { flex: 1; padding: 32px 48px; max-width: 1100px; }
  .grid2 { display: grid; grid-template-columns: 1fr 1fr; gap: 12px 48px; }
  .grid4 { display: grid; grid-template-columns: repeat(4, 1fr); gap: 8px 24px; margin-top: 12px; }
  .slider label { display: flex; justify-content: space-between; font-size: 0.9rem; }
  .slider input { width: 100%; }
  .status { font-weight: bold; }
  .status.on { color: green; }
  .status.off { color: red; }
  .notice { padding: 12px 16px; border-radius: 6px; margin: 16px 0; }
  .notice.success { background: #dff5e3; color: #1b5e20; }
  .notice.error { background: #fde2e1; color: #b71c1c; }
  .notice.warning { background: #fff4d6; color: #7a5b00; }
  button { padding: 8px 16px; border-radius: 6px; border: 1px solid #c9ccd3; background: #fff; cursor: pointer; }
  .chart svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
{{end}}

{{define "nav"}}<nav>
  <h2>🚀 Navigation</h2>
  {{range .Nav}}<a href="/nav?page={{.Name}}"{{if .Active}} class="active"{{end}}>{{.Icon}} {{.Title}}</a>
  {{end}}
  <form method="post" action="/session/reset"><button type="submit">Reset session</button></form>
</nav>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "home"}}{{template "head" .}}{{template "nav" .}}<main>
<h1>🌾 Smart Irrigation System</h1>
<p>Predict ON/OFF status of 20 sprinklers using sensor data.</p>
<form method="post" action="/predict">
  <div class="grid2">
  {{range .Sensors}}<div class="slider">
      <label for="sensor_{{.Index}}"><span>Sensor {{.Index}}</span><span id="sensor_{{.Index}}_value">{{reading .Value}}</span></label>
      <input type="range" id="sensor_{{.Index}}" name="sensor_{{.Index}}" data-index="{{.Index}}" min="0" max="1" step="0.01" value="{{reading .Value}}">
    </div>
  {{end}}</div>
  <p><button type="submit">🔍 Predict Sprinklers</button></p>
</form>
{{if .Error}}<div class="notice error" id="prediction-error">Prediction failed: {{.Error}}</div>{{end}}
{{if .Statuses}}<div class="notice success">✅ Prediction complete!</div>
<h3>🌿 Sprinkler Status</h3>
<div class="grid4">
{{range .Statuses}}<div class="status {{if .On}}on{{else}}off{{end}}">Sprinkler {{.Index}}: {{if .On}}🌧️{{else}}🚫{{end}} {{.Label}}</div>
{{end}}</div>{{end}}
</main>
<script>
document.querySelectorAll('input[type=range]').forEach(function (el) {
  el.addEventListener('input', function () {
    document.getElementById(el.id + '_value').textContent = Number(el.value).toFixed(2);
  });
  el.addEventListener('change', function () {
    fetch('/api/sensors/' + el.dataset.index, {
      method: 'PUT',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({value: Number(el.value)})
    });
  });
});
</script>
{{template "foot" .}}{{end}}

{{define "summary"}}{{template "head" .}}{{template "nav" .}}<main>
<h1>📊 Sprinkler Summary</h1>
{{with .Summary}}
<p>🔵 <strong>Sprinklers ON</strong>: <span id="on-count">{{.OnCount}}</span> &nbsp;&nbsp;&nbsp;&nbsp; 🔴 <strong>OFF</strong>: <span id="off-count">{{.OffCount}}</span></p>
<h4>📊 Bar Chart: ON vs OFF Count</h4>
<div class="chart" id="bar-chart">{{$.BarSVG}}</div>
<h4>📈 Line Chart: Per-Sprinkler Status</h4>
<div class="chart" id="line-chart">{{$.LineSVG}}</div>
{{else}}
<div class="notice warning" id="no-prediction">⚠️ No predictions yet. Go to <strong>Home</strong> and click <strong>Predict Sprinklers</strong>.</div>
{{end}}
</main>
{{template "foot" .}}{{end}}

{{define "about"}}{{template "head" .}}{{template "nav" .}}<main>
<h1>ℹ️ About This Project</h1>
<p><strong>🧪 Project Title:</strong> Farm Irrigation System Using Machine Learning<br>
<strong>🎯 Objective:</strong> Automate sprinkler control using real-time sensor values.</p>
<p><strong>🔧 Technologies Used:</strong></p>
<ul>
  <li>Go, net/http and gorilla/mux for the dashboard</li>
  <li>Declarative model artifacts (JSON or YAML) for the classifier</li>
  <li>go-chart for charting</li>
  <li>Optional MQTT publishing of sprinkler commands</li>
</ul>
<p><strong>📈 Workflow:</strong></p>
<ul>
  <li>Input 20 scaled sensor readings</li>
  <li>ML model predicts ON/OFF status for each sprinkler</li>
  <li>Results shown with emojis and color highlights</li>
  <li>Includes bar + line chart summaries of sprinklers</li>
</ul>
<p><strong>🌱 Benefits:</strong></p>
<ul>
  <li>Optimized water usage</li>
  <li>Reduces manual labor</li>
  <li>Improves farm productivity</li>
  <li>Scalable for real-time agricultural use</li>
</ul>
{{if .ModelKind}}<p><small>Loaded model: {{.ModelKind}}</small></p>{{end}}
</main>
{{template "foot" .}}{{end}}

{{define "loadfail"}}{{template "head" .}}<main>
<div class="notice error" id="load-error">❌ Failed to load model. Please check the path or format.</div>
</main>
{{template "foot" .}}{{end}}
`
