package app

import (
	"log"
	"net/http"

	"github.com/lurelabs/lure/internal/callback"
	"github.com/lurelabs/lure/internal/engine"
	"github.com/lurelabs/lure/internal/eventlog"
	"github.com/lurelabs/lure/internal/httpapi"
	"github.com/lurelabs/lure/internal/session"
)

// eventLogCapacity bounds the in-memory event ring. Old events fall off;
// the log is an operational window, not an archive.
const eventLogCapacity = 1024

type App struct {
	cfg      Config
	logger   *log.Logger
	store    *session.Store
	eventLog *eventlog.Logger
	engine   *engine.Engine
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	st := session.New(nil, cfg.MaxSessions)
	el := eventlog.New(eventLogCapacity, nil)

	var sink engine.Sink
	wh := callback.NewWebhook(cfg.CallbackURL, cfg.CallbackTimeout, logger)
	if wh.Enabled() {
		sink = wh
	} else {
		logger.Printf("app: no CALLBACK_URL configured, final reports will only be logged")
	}

	eng := engine.New(engine.Config{
		MaxMessages:     cfg.MaxMessagesPerSession,
		MinForReport:    cfg.MinMessagesForReport,
		SessionTTL:      cfg.SessionTTL,
		MaxMessageBytes: cfg.MaxMessageBytes,
		CallbackTimeout: cfg.CallbackTimeout,
	}, logger, st, sink, el, nil)

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		eventLog: el,
		engine:   eng,
	}, nil
}

// Engine exposes the orchestrator for background jobs.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

func (a *App) Router(gate *httpapi.IntakeGate) http.Handler {
	routerCfg := httpapi.RouterConfig{
		APIKey:    a.cfg.APIKey,
		JWTSecret: a.cfg.JWTSecret,
		JWTExpiry: a.cfg.JWTExpiry,
	}
	return httpapi.NewRouter(routerCfg, a.logger, a.engine, a.store, a.eventLog, gate)
}

func (a *App) Close() error {
	return nil
}
