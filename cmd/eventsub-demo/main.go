// Command eventsub-demo wires the Session and Controller together
// against the real Twitch EventSub endpoint, subscribing to whatever
// (type, version, broadcaster_user_id) the -sub flag names and logging
// every decoded notification it receives.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/buildinfo"
	"github.com/nugget/twitch-eventsub-ws/internal/config"
	"github.com/nugget/twitch-eventsub-ws/internal/events"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/controller"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/listener"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/payload"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/session"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/transport"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: search DefaultSearchPaths)")
	subFlag := flag.String("sub", "channel.ban:1", "type:version of the subscription to place (condition broadcaster_user_id comes from -broadcaster)")
	broadcaster := flag.String("broadcaster", "", "broadcaster_user_id to use as the subscription condition")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(buildinfo.String())
		return
	}

	path, err := config.FindConfig(*configPath)
	var cfg *config.Config
	if err != nil {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)

	bus := events.New()
	go logBusEvents(logger, bus)

	rest := controller.NewHTTPRESTClient(cfg.REST)

	factory := func(ctx context.Context, target string) (*session.Session, error) {
		conn, err := dialTarget(cfg, target)
		if err != nil {
			return nil, err
		}
		s := session.New(conn, demoListener{logger: logger},
			session.WithLogger(logger),
			session.WithOnReconnect(func(newURL string) {
				logger.Info("session requested reconnect", "reconnect_url", newURL)
			}))
		go func() {
			if err := s.Run(ctx); err != nil {
				logger.Error("session terminated", "error", err)
			}
		}()
		deadline := time.Now().Add(30 * time.Second)
		for s.State() != session.StateReady {
			if s.State() == session.StateClosed || time.Now().After(deadline) {
				return s, fmt.Errorf("session did not reach Ready: state=%v", s.State())
			}
			time.Sleep(20 * time.Millisecond)
		}
		return s, nil
	}

	ctrlCfg := controller.Config{
		MaxSessions:                cfg.Controller.MaxSessions,
		MaxSubscriptionsPerSession: cfg.Controller.MaxSubscriptionsPerSession,
		BackoffInitial:             cfg.Controller.BackoffInitial,
		BackoffMax:                 cfg.Controller.BackoffMax,
		PlaceRetryShortDelay:       250 * time.Millisecond,
		PlaceRetryLongDelay:        500 * time.Millisecond,
	}
	ctrl := controller.New(ctrlCfg, rest, factory, controller.WithLogger(logger), controller.WithEventBus(bus))

	typ, version, err := parseSub(*subFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var conditions []controller.KV
	if *broadcaster != "" {
		conditions = append(conditions, controller.KV{Key: "broadcaster_user_id", Value: *broadcaster})
	}
	handle := ctrl.Subscribe(controller.Request{Type: typ, Version: version, Conditions: conditions})
	defer handle.Release()

	logger.Info("subscribed", "type", typ, "version", version, "broadcaster_user_id", *broadcaster)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", "error", err)
	}
}

func parseSub(s string) (typ, version string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid -sub %q, want type:version (e.g. channel.ban:1)", s)
	}
	return parts[0], parts[1], nil
}

// dialTarget builds a transport.Conn either against the configured
// default endpoint (target == "") or a reconnect_url captured from a
// session_reconnect frame.
func dialTarget(cfg *config.Config, target string) (transport.Conn, error) {
	if target == "" {
		return &transport.WebSocketConn{
			Host:      cfg.EventSub.Host,
			Port:      cfg.EventSub.Port,
			Path:      cfg.EventSub.Path,
			UserAgent: userAgent(cfg),
		}, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse reconnect_url: %w", err)
	}
	host := u.Hostname()
	port := 443
	if p := u.Port(); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}
	return &transport.WebSocketConn{
		Host:      host,
		Port:      port,
		Path:      u.Path,
		UserAgent: userAgent(cfg),
	}, nil
}

func userAgent(cfg *config.Config) string {
	if cfg.EventSub.UserAgent != "" {
		return cfg.EventSub.UserAgent
	}
	return buildinfo.UserAgent()
}

func logBusEvents(logger *slog.Logger, bus *events.Bus) {
	for e := range bus.Subscribe(64) {
		logger.Info("event", "source", e.Source, "kind", e.Kind, "data", e.Data)
	}
}

// demoListener logs every decoded notification at Info level and
// otherwise relies on NopListener for the methods this demo doesn't
// care to print specially.
type demoListener struct {
	listener.NopListener
	logger *slog.Logger
}

func (l demoListener) OnSessionWelcome(meta eventsub.Metadata, welcome payload.SessionWelcome) {
	l.logger.Info("session_welcome", "session_id", welcome.ID, "keepalive_timeout_seconds", welcome.KeepaliveTimeoutSeconds)
}

func (l demoListener) OnNotification(meta eventsub.Metadata, _ json.RawMessage) {
	l.logger.Info("notification", "type", meta.SubscriptionType, "version", meta.SubscriptionVersion)
}

func (l demoListener) OnChannelBan(meta eventsub.Metadata, event payload.ChannelBan) {
	l.logger.Info("channel.ban",
		"broadcaster", event.Event.Broadcaster.Login,
		"user", event.Event.Target.Login,
		"moderator", event.Event.Moderator.Login,
		"reason", event.Event.Reason,
		"is_permanent", event.Event.IsPermanent,
	)
}
