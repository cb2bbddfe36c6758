// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server that publishes
// lint failures as diagnostics and offers their fixes as code actions.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/tslint/config"
	"github.com/luthersystems/tslint/lint"
	"github.com/luthersystems/tslint/rules"
)

const (
	serverName = "tslint-lsp"
	source     = "tslint"
)

// Server is the lint language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string

	// rules is nil until set by WithRules or resolved from the workspace
	// configuration on initialize.
	rulesMu sync.RWMutex
	rules   []*lint.ConfiguredRule
	lookup  config.Lookup
	log     *logrus.Logger

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithRules fixes the rule set instead of reading the workspace
// configuration.
func WithRules(rs []*lint.ConfiguredRule) Option {
	return func(s *Server) { s.rules = rs }
}

// WithLookup resolves rule names in the workspace configuration with
// lookup instead of the built-in registry.
func WithLookup(lookup config.Lookup) Option {
	return func(s *Server) { s.lookup = lookup }
}

// WithLogger sets the logger used for configuration warnings and lint
// timing.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new lint language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(os.Stderr)
		s.log.SetLevel(logrus.WarnLevel)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCodeAction: s.textDocumentCodeAction,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.loadRules()

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{
			protocol.CodeActionKindQuickFix,
			codeActionKindFixAll,
		},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// loadRules resolves the rule set from the configuration governing the
// workspace root unless rules were given explicitly.
func (s *Server) loadRules() {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	if s.rules != nil {
		return
	}
	cfg, err := config.LoadFor("", s.rootPath)
	if err != nil {
		s.log.WithError(err).Warn("using default configuration")
		cfg = config.Default()
	}
	lookup := s.lookup
	if lookup == nil {
		lookup = rules.Lookup
	}
	rs, err := cfg.Resolve(lookup, s.log)
	if err != nil {
		s.log.WithError(err).Warn("using default configuration")
		rs, _ = config.Default().Resolve(lookup, s.log)
	}
	if rs == nil {
		rs = []*lint.ConfiguredRule{}
	}
	s.rules = rs
}

func (s *Server) linter() *lint.Linter {
	s.rulesMu.RLock()
	rs := s.rules
	s.rulesMu.RUnlock()
	if rs == nil {
		s.loadRules()
		s.rulesMu.RLock()
		rs = s.rules
		s.rulesMu.RUnlock()
	}
	return &lint.Linter{Rules: rs, Logger: s.log}
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(ctx *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
