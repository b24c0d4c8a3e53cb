package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/pkg/perm"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Application }}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; margin: 40px; background: #f5f5f5; }
    .container { max-width: 800px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; }
    .status { background: #e8f5e8; padding: 15px; border-left: 4px solid #4caf50; margin: 20px 0; }
    .status.warn { background: #fff4e5; border-left-color: #ff9800; }
    .metric { display: inline-block; margin: 10px 20px 10px 0; padding: 10px; background: #f9f9f9; border-radius: 4px; }
    .endpoint { background: #f0f8ff; padding: 10px; margin: 10px 0; border-left: 3px solid #007acc; font-family: monospace; }
    table { border-collapse: collapse; }
    td, th { padding: 4px 12px; text-align: left; font-family: monospace; }
  </style>
</head>
<body>
  <div class="container">
    <h1>{{ .Application }}</h1>
    <div class="status{{ if .Warnings }} warn{{ end }}">
      <h3>Service Status: {{ .Status }}</h3>
      <p><strong>Uptime:</strong> {{ .Uptime }}</p>
      <p><strong>Current Time:</strong> {{ .Now }}</p>
      {{ range .Warnings }}<p>{{ . }}</p>{{ end }}
    </div>
    {{ if .HasSystem }}
    <h3>System Metrics</h3>
    <div class="metric"><strong>CPU:</strong> {{ printf "%.1f" .CPU }}%</div>
    <div class="metric"><strong>Memory:</strong> {{ printf "%.1f" .Memory }}%</div>
    <div class="metric"><strong>Disk:</strong> {{ printf "%.1f" .Disk }}%</div>
    {{ end }}
    <h3>Permission Table</h3>
    <table>
      <tr><th>Octal</th><th>Symbolic</th></tr>
      {{ range $v, $s := .Table }}<tr><td>{{ $v }}</td><td>{{ $s }}</td></tr>
      {{ end }}
    </table>
    <h3>Available API Endpoints</h3>
    {{ range .Endpoints }}<div class="endpoint">{{ . }}</div>
    {{ end }}
  </div>
</body>
</html>
`))

var dashboardEndpoints = []string{
	"GET /health",
	"GET /api/status",
	"GET /api/metrics",
	"POST /api/echo",
	"GET /api/encode/{octal}",
	"GET /api/decode/{symbolic}",
	"POST /api/convert",
}

type dashboardView struct {
	Application string
	Status      string
	Uptime      string
	Now         string
	Warnings    []string
	HasSystem   bool
	CPU         float64
	Memory      float64
	Disk        float64
	Table       []string
	Endpoints   []string
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	table := perm.Table()
	view := dashboardView{
		Application: a.info.Application,
		Status:      "RUNNING",
		Uptime:      formatUptime(a.uptime()),
		Now:         a.now().Format(time.DateTime),
		Table:       table[:],
		Endpoints:   dashboardEndpoints,
	}

	if snap, err := a.system.Collect(r.Context()); err == nil {
		view.HasSystem = true
		view.CPU, view.Memory, view.Disk = snap.CPU.Percent, snap.Memory.Percent, snap.Disk.Percent
	} else {
		a.log.Warn("dashboard without system metrics", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		a.log.Error("Error in dashboard", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Debug("write dashboard failed", zap.Error(err))
	}
}
