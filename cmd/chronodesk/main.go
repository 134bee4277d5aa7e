// Command chronodesk runs the desk timer: countdowns, phase routines and
// alarms driven by five buttons, with events published to MQTT and a live
// status page over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/chronodesk/internal/app"
	"github.com/sweeney/chronodesk/internal/audio"
	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/config"
	"github.com/sweeney/chronodesk/internal/display"
	"github.com/sweeney/chronodesk/internal/gpio"
	"github.com/sweeney/chronodesk/internal/input"
	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/logic"
	"github.com/sweeney/chronodesk/internal/mqtt"
	"github.com/sweeney/chronodesk/internal/notify"
	"github.com/sweeney/chronodesk/internal/status"
	"github.com/sweeney/chronodesk/internal/store"
	"github.com/sweeney/chronodesk/internal/web"
)

var (
	configPath string
	logLevel   string

	brokerFlag    string
	httpFlag      string
	heartbeatFlag time.Duration
	pollFlag      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "chronodesk",
	Short: "Desk timer with countdowns, routines and alarms",
	Long: "chronodesk drives the desk timer hardware. It polls the buttons, " +
		"runs the countdown, routine and alarm engines, and reports events " +
		"over MQTT and an HTTP status page.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		return run(cmd.Context(), cfg)
	},
}

var inputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "Print the current button states and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		reader, err := gpio.NewRealReader(cfg.Pins.Chip, gpioPins(cfg.Pins))
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()

		b, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatButtons(b))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored alarms, timers and accounts as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backend, err := store.OpenBackend(cfg.Storage.Driver, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		st := store.New(backend)
		defer st.Close()

		out, err := yaml.Marshal(st.Snapshot(cmd.Context()))
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFilename, "path to the settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&brokerFlag, "broker", "", `MQTT broker address ("off" disables)`)
	rootCmd.Flags().StringVar(&httpFlag, "http", "", `HTTP status address ("off" disables)`)
	rootCmd.Flags().DurationVar(&heartbeatFlag, "heartbeat", 0, "heartbeat interval")
	rootCmd.Flags().DurationVar(&pollFlag, "poll", 0, "loop polling interval")

	rootCmd.AddCommand(inputsCmd, exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	name := cfg.LogLevel
	if logLevel != "" {
		name = logLevel
	}
	lvl, ok := logger.ParseLogLevel(name)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", name)
	}
	logger.SetLevel(lvl)

	return cfg, nil
}

// applyFlags overrides settings from flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("broker") {
		cfg.MQTT.Broker = offToEmpty(brokerFlag)
	}
	if flags.Changed("http") {
		cfg.HTTP.Addr = offToEmpty(httpFlag)
	}
	if flags.Changed("heartbeat") && heartbeatFlag > 0 {
		cfg.MQTT.Heartbeat = heartbeatFlag
	}
	if flags.Changed("poll") && pollFlag > 0 {
		cfg.PollInterval = pollFlag
	}
}

func offToEmpty(v string) string {
	if v == "off" {
		return ""
	}
	return v
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx = logger.WithName(ctx, "chronodesk")

	backend, err := store.OpenBackend(cfg.Storage.Driver, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	st := store.New(backend)
	defer st.Close()

	reader, err := gpio.NewRealReader(cfg.Pins.Chip, gpioPins(cfg.Pins))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	var led gpio.LED
	if l, err := gpio.NewRealLED(cfg.Pins.Chip, cfg.Pins.LED); err != nil {
		logger.WarnKV(ctx, "status LED disabled", "error", err)
	} else {
		led = l
		defer l.Close()
	}

	var player audio.Player = audio.Nop{}
	if p, err := audio.NewExecPlayer(ctx, cfg.Audio.Command, cfg.Audio.TracksDir); err != nil {
		logger.WarnKV(ctx, "audio disabled", "error", err)
	} else {
		player = p
	}

	src := clock.NewSystem(cfg.UTCOffset)
	dispatcher := notify.NewDispatcher(ctx, player, led, src,
		notify.NewAlertzy(cfg.Alertzy.Endpoint, cfg.Alertzy.Timeout), notify.Options{})
	defer dispatcher.Close()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Nop{}
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(ctx, mqtt.Options{Broker: cfg.MQTT.Broker, ClientID: cfg.MQTT.ClientID})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	netInfo := readNetworkInfo()
	url := ""
	if netInfo != nil {
		url = deviceURL(netInfo.IP, cfg.HTTP.Addr)
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.PollInterval.Milliseconds(),
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		Storage:     cfg.Storage.Driver,
		DeviceURL:   url,
	})
	if netInfo != nil {
		tracker.SetNetwork(netInfo)
	}

	keys := input.NewKeys(reader, input.DefaultDebounceMs, input.DefaultRepeatDelayMs)
	screen := display.NewMirror(display.NewLog(ctx))
	defer screen.Close()

	machine := app.New(ctx, app.Config{
		Clock:     src,
		Input:     keys,
		Prompter:  input.NewLinePrompter(os.Stdin, os.Stdout),
		Display:   screen,
		Notifier:  dispatcher,
		Store:     st,
		Volume:    cfg.Volume,
		DeviceURL: url,
	})

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		logger.WarnKV(ctx, "publish startup event", "error", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(ctx, cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorKV(ctx, "http server", "error", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()
		logger.InfoKV(ctx, "http status server listening", "addr", cfg.HTTP.Addr, "url", url)
	}

	logger.InfoKV(ctx, "started",
		"poll", cfg.PollInterval,
		"storage", cfg.Storage.Driver,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.MQTT.Heartbeat)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	dev := device{machine: machine, screen: screen, keys: keys, dispatcher: dispatcher}
	return runLoop(ctx, dev, publisher, publisher, tracker, cfg.MQTT.Heartbeat, time.Now, ticker.C, sigCh)
}

// device groups the parts of the timer the run loop drives and reports on.
type device struct {
	machine    *app.Machine
	screen     *display.Mirror
	keys       *input.Keys
	dispatcher *notify.Dispatcher
}

func runLoop(ctx context.Context, dev device, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())
	var inputFailing bool

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(dev.machine.Report(), dev.screen.Lines(), hb.Counts(), dev.dispatcher.Stats())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			logger.InfoKV(ctx, "shutting down", "signal", signalName)

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.WarnKV(ctx, "publish shutdown event", "error", err)
			}
			return nil

		case <-ctx.Done():
			return nil

		case <-tick:
			t := now()
			events := dev.machine.Tick()

			if err := dev.keys.Err(); err != nil && !inputFailing {
				logger.WarnKV(ctx, "button read failing", "error", err)
				inputFailing = true
			} else if err == nil && inputFailing {
				logger.InfoKV(ctx, "button read recovered")
				inputFailing = false
			}

			hb.Record(events)
			for _, event := range events {
				logger.InfoKV(ctx, "event", "type", event.Type, "timer", event.Timer, "phase", event.Phase)
				if err := publisher.Publish(event, t); err != nil {
					logger.WarnKV(ctx, "publish event", "type", event.Type, "error", err)
				}
			}

			refresh()

			if hbData := hb.Check(t, heartbeat); hbData != nil {
				logger.DebugKV(ctx, "heartbeat",
					"uptime", hbData.Uptime,
					"countdowns", hbData.Counts.CountdownsFinished,
					"phases", hbData.Counts.PhasesCompleted,
					"alarms", hbData.Counts.AlarmsRung)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					logger.WarnKV(ctx, "publish heartbeat", "error", err)
				}
			}
		}
	}
}

// envNetworkIP is the address the network helper writes to the service
// environment. Without it the first non-loopback IPv4 address is used.
const envNetworkIP = "NETWORK_IP"

func readNetworkInfo() *status.NetworkInfo {
	host, _ := os.Hostname()
	ip := os.Getenv(envNetworkIP)
	if ip == "" {
		ip = firstIPv4()
	}
	if host == "" && ip == "" {
		return nil
	}
	return &status.NetworkInfo{Hostname: host, IP: ip}
}

func firstIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

// deviceURL is the status page address shown on the device info screen.
// An explicit listen host wins over ip. Empty when HTTP is off or no
// address is known.
func deviceURL(ip, httpAddr string) string {
	if httpAddr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = ip
	}
	if host == "" {
		return ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port == "80" {
		return "http://" + host + "/"
	}
	return "http://" + host + ":" + port + "/"
}

func gpioPins(p config.Pins) gpio.Pins {
	return gpio.Pins{
		Up:     p.Up,
		Down:   p.Down,
		Left:   p.Left,
		Right:  p.Right,
		Select: p.Select,
		LED:    p.LED,
	}
}

func formatButtons(b gpio.Buttons) string {
	return fmt.Sprintf("UP: %s, DOWN: %s, LEFT: %s, RIGHT: %s, SELECT: %s",
		pressed(b.Up), pressed(b.Down), pressed(b.Left), pressed(b.Right), pressed(b.Select))
}

func pressed(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}
