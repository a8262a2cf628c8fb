// Package api provides HTTP handlers and the main API server logic for FormFlow.
//
// It exposes RESTful endpoints for conversational messages, persisted contact
// records, document indexing, and an inbound Twilio webhook. The API wires
// together the store, genai, docqa, form and bot modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/formflow/FormFlow/internal/bot"
	"github.com/formflow/FormFlow/internal/docqa"
	"github.com/formflow/FormFlow/internal/form"
	"github.com/formflow/FormFlow/internal/genai"
	"github.com/formflow/FormFlow/internal/messaging"
	"github.com/formflow/FormFlow/internal/store"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Opts holds API server configuration.
type Opts struct {
	Addr         string
	DocumentsDir string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithDocumentsDir sets a document folder indexed at startup.
func WithDocumentsDir(dir string) Option {
	return func(o *Opts) { o.DocumentsDir = dir }
}

// Server hosts the FormFlow HTTP API.
type Server struct {
	bot   *bot.Bot
	store store.RecordStore
	docqa *docqa.DocumentQA
	msg   messaging.Service
	addr  string
}

// NewServer assembles a Server from its collaborators. docQA and msg may be
// nil, disabling the documents endpoint and the Twilio webhook respectively.
func NewServer(b *bot.Bot, st store.RecordStore, docQA *docqa.DocumentQA, msg messaging.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{bot: b, store: st, docqa: docQA, msg: msg, addr: cfg.Addr}
}

// Handler returns the HTTP handler serving all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", s.messagesHandler)
	mux.HandleFunc("/records", s.recordsHandler)
	mux.HandleFunc("/documents", s.documentsHandler)
	mux.HandleFunc("/webhook/twilio", s.twilioWebhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// ListenAndServe starts the HTTP server and blocks.
func (s *Server) ListenAndServe() error {
	slog.Info("FormFlow API listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Run constructs every module from its options and serves the API. This is
// the single bootstrap entry point used by cmd/FormFlow.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, msgOpts []messaging.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to build record store: %w", err)
	}
	defer st.Close()

	// The GenAI client is optional: without it the bot still collects forms,
	// but document QA and the chat fallback are disabled.
	var genaiClient genai.ClientInterface
	var docQA *docqa.DocumentQA
	if client, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("GenAI client unavailable, document QA and chat fallback disabled", "error", err)
	} else {
		genaiClient = client
		docQA = docqa.NewDocumentQA(client)
	}

	var msgService messaging.Service
	if svc, err := messaging.NewTwilioService(msgOpts...); err != nil {
		slog.Warn("Twilio service unavailable, webhook replies disabled", "error", err)
	} else {
		msgService = svc
	}

	forms := form.NewHandler(st)
	var qa bot.QuestionAnswerer
	if docQA != nil {
		qa = docQA
	}
	chatBot := bot.NewBot(forms, qa, genaiClient)

	server := NewServer(chatBot, st, docQA, msgService, apiOpts...)

	if cfg.DocumentsDir != "" && docQA != nil {
		if _, err := docQA.LoadDocuments(context.Background(), cfg.DocumentsDir); err != nil {
			slog.Error("Failed to index documents directory at startup", "error", err, "dir", cfg.DocumentsDir)
		}
	}

	return server.ListenAndServe()
}

// buildStore picks a backend from the configured DSN. With no DSN an
// in-memory store is used (records are lost on restart).
func buildStore(storeOpts []store.Option) (store.RecordStore, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Warn("No store DSN configured, using in-memory record store")
		return store.NewInMemoryStore(), nil
	}

	switch store.DetectDSNType(cfg.DSN) {
	case "postgres":
		slog.Debug("Building PostgreSQL record store")
		return store.NewPostgresStore(storeOpts...)
	case "sqlite":
		slog.Debug("Building SQLite record store", "path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	default:
		slog.Debug("Building JSON record store", "path", cfg.DSN)
		return store.NewJSONStore(storeOpts...)
	}
}
