package health

import (
	"encoding/json"
	"fmt"
)

// RenderDashboardHTML returns a minimal HTML status page for GET /.
func RenderDashboardHTML(health CollectResult) string {
	b, _ := json.MarshalIndent(map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	}, "", "  ")

	badge := "#2e7d32"
	if health.Status != "ok" {
		badge = "#c62828"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>RenewMart · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: ui-monospace, monospace; background: #f6f8f7; color: #173e35; margin: 2rem; }
    .badge { display: inline-block; padding: .25rem .75rem; border-radius: 1rem; color: #fff; background: %s; }
    pre { background: #fff; border: 1px solid #dfe6e3; border-radius: .5rem; padding: 1rem; overflow: auto; }
  </style>
</head>
<body>
  <h1>RenewMart API <span class="badge">%s</span></h1>
  <pre>%s</pre>
</body>
</html>`, badge, health.Status, string(b))
}
