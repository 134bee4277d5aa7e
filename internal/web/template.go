package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/chronodesk/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"clock": func(sec uint32) string {
		if sec >= 3600 {
			return fmt.Sprintf("%d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
		}
		return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Chronodesk</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre#screen { background: #111; color: #9cf; padding: 8px; width: 22em; min-height: 6em; }
.ringing { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Chronodesk<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Screen</h2>
<pre id="screen">{{range .Screen}}{{.}}
{{end}}</pre>

<h2>Device</h2>
<table>
<tr><th>Screen</th><td id="state">{{.Device.State}}</td></tr>
<tr><th>Countdown</th><td id="countdown">{{.Device.Countdown.State}} {{clock .Device.Countdown.Remaining}}{{if .Device.Countdown.Paused}} (paused){{end}}</td></tr>
<tr><th>Sequence</th><td id="sequence">{{.Device.Sequence.State}}{{if .Device.Sequence.Timer}} {{.Device.Sequence.Timer}}: {{.Device.Sequence.Phase}} {{.Device.Sequence.PhaseNo}}/{{.Device.Sequence.PhaseCount}} {{clock .Device.Sequence.Remaining}}{{end}}</td></tr>
<tr><th>Alarms</th><td id="alarms" class="{{if .Device.Alarms.Ringing}}ringing{{end}}">{{.Device.Alarms.Count}} set, {{.Device.Alarms.Next}}{{if .Device.Alarms.Ringing}} RINGING{{end}}</td></tr>
<tr><th>Timers</th><td>{{.Device.Timers}}</td></tr>
<tr><th>Accounts</th><td>{{.Device.Accounts}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Host</th><td>{{.Network.Hostname}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Countdowns finished</th><td>{{.Counts.CountdownsFinished}}</td></tr>
<tr><th>Phases completed</th><td>{{.Counts.PhasesCompleted}}</td></tr>
<tr><th>Sequences finished</th><td>{{.Counts.SequencesFinished}}</td></tr>
<tr><th>Alarms rung</th><td>{{.Counts.AlarmsRung}}</td></tr>
</table>

<h2>Notifications</h2>
<table>
<tr><th>Local alerts</th><td>{{.Notify.Alerts}}</td></tr>
<tr><th>Pushes sent</th><td>{{.Notify.PushesSent}}</td></tr>
<tr><th>Pushes failed</th><td>{{.Notify.PushesFailed}}</td></tr>
<tr><th>Pushes dropped</th><td>{{.Notify.PushesDropped}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Storage</th><td>{{.Config.Storage}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var screen = document.getElementById("screen");
  var state = document.getElementById("state");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        screen.textContent = (s.screen || []).join("\n");
        state.textContent = s.device.state;
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
