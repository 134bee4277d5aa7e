package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/chronodesk/internal/app"
	"github.com/sweeney/chronodesk/internal/logic"
	"github.com/sweeney/chronodesk/internal/notify"
	"github.com/sweeney/chronodesk/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		Storage:     "file",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(context.Background(), ":0", tr)
	srv.PushInterval = 20 * time.Millisecond
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, srv, tr
}

func runningReport() app.Report {
	return app.Report{
		State:     app.StateCountdownRunning,
		Previous:  app.StateCountdownSetup,
		Countdown: app.CountdownReport{State: "RUNNING", Remaining: 95},
		Sequence:  app.SequenceReport{State: "SELECTING"},
		Alarms:    app.AlarmReport{Count: 2, Ringing: true, Next: "Next 07:00 in 0h00m"},
		Timers:    3,
	}
}

func getStatus(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(runningReport(), []string{"Single Timer", "01:35"},
		logic.EventCounts{CountdownsFinished: 5, AlarmsRung: 2}, notify.Stats{PushesSent: 7})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Device.State != app.StateCountdownRunning {
		t.Errorf("Device.State: got %q", sj.Status.Device.State)
	}
	if sj.Status.Device.Countdown.Remaining != 95 {
		t.Errorf("Countdown.Remaining: got %d, want 95", sj.Status.Device.Countdown.Remaining)
	}
	if len(sj.Status.Screen) != 2 || sj.Status.Screen[1] != "01:35" {
		t.Errorf("Screen: got %v", sj.Status.Screen)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.CountdownsFinished != 5 {
		t.Errorf("Counts.CountdownsFinished: got %d, want 5", sj.Status.Counts.CountdownsFinished)
	}
	if sj.Status.Notify.PushesSent != 7 {
		t.Errorf("Notify.PushesSent: got %d, want 7", sj.Status.Notify.PushesSent)
	}
	if sj.Status.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", sj.Status.Config.PollMs)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{Hostname: "cubo", IP: "192.168.1.42"})

	sj := getStatus(t, ts.URL)
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(runningReport(), []string{"Single Timer", "01:35"}, logic.EventCounts{}, notify.Stats{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<title>Chronodesk</title>", "COUNTDOWN_RUNNING", "RUNNING 01:35", "RINGING", "01:35\n"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, _, tr := newTestServer(t)

	if getStatus(t, ts.URL).Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(runningReport(), nil, logic.EventCounts{PhasesCompleted: 1}, notify.Stats{})
	tr.SetMQTTConnected(true)

	sj := getStatus(t, ts.URL)
	if !sj.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj.Status.Counts.PhasesCompleted != 1 {
		t.Errorf("PhasesCompleted: got %d, want 1", sj.Status.Counts.PhasesCompleted)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusJSON {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(msg, &sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sj
}

func TestWebsocketStreamsStatus(t *testing.T) {
	ts, _, tr := newTestServer(t)
	conn := dialWS(t, ts)

	first := readStatus(t, conn)
	if first.Status.Ready {
		t.Error("expected Ready=false in first push")
	}

	tr.Update(runningReport(), []string{"01:35"}, logic.EventCounts{}, notify.Stats{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sj := readStatus(t, conn)
		if sj.Status.Ready {
			if sj.Status.Device.State != app.StateCountdownRunning {
				t.Errorf("Device.State: got %q", sj.Status.Device.State)
			}
			return
		}
	}
	t.Fatal("update never pushed")
}

func TestWebsocketClosedOnShutdown(t *testing.T) {
	ts, srv, _ := newTestServer(t)
	conn := dialWS(t, ts)
	readStatus(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Errorf("expected going-away close, got %v", err)
			}
			return
		}
	}
}

func TestWebsocketSkipsUnchangedStatus(t *testing.T) {
	ts, srv, _ := newTestServer(t)
	srv.Keepalive = time.Hour
	conn := dialWS(t, ts)
	readStatus(t, conn)

	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no message while the status is unchanged")
	}
}

func TestWebsocketKeepalive(t *testing.T) {
	ts, srv, _ := newTestServer(t)
	srv.Keepalive = 30 * time.Millisecond
	conn := dialWS(t, ts)

	readStatus(t, conn)
	if sj := readStatus(t, conn); sj.Status.Ready {
		t.Error("keepalive should resend the unchanged status")
	}
}
