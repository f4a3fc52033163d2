package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/obadir/obad/internal/acl"
	"github.com/obadir/obad/internal/config"
	"github.com/obadir/obad/internal/logging"
	"github.com/obadir/obad/internal/session"
	"github.com/obadir/obad/internal/storage"
)

// Server owns the listener and the connections it has accepted, mirroring
// the teacher's LDAPServer: a config-driven construction step (NewServer)
// kept separate from Start, so tests can build one without binding a
// socket.
type Server struct {
	config    *config.Config
	logger    logging.Logger
	store     *storage.Memory
	aclMgr    *acl.Manager
	listener  net.Listener
	wg        sync.WaitGroup
	mu        sync.Mutex
	closed    bool
}

// NewServer wires a logger, an in-memory storage backend seeded with any
// configured access rules, and an access-control manager driven from that
// backend's AccessRules/LookupGroup methods.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewLoggerWithLevel(cfg.LogLevel)

	var rules []string
	if cfg.Storage.SeedRulesFile != "" {
		var err error
		rules, err = readRulesFile(cfg.Storage.SeedRulesFile)
		if err != nil {
			return nil, fmt.Errorf("obad: %w", err)
		}
	}

	store := storage.NewMemory(rules)
	aclMgr := acl.NewManager(store.AccessRules, logger, store.LookupGroup)

	return &Server{
		config: cfg,
		logger: logger,
		store:  store,
		aclMgr: aclMgr,
	}, nil
}

// readRulesFile reads one "to ... by ..." directive per line, skipping
// blank lines and lines starting with "#".
func readRulesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read access rules %s: %w", path, err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	return rules, scanner.Err()
}

// Start opens the listener and begins accepting connections. It starts
// the access-control refresher and blocks until the listener is closed.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("obad: listen on %s: %w", s.config.Listen, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.aclMgr.Start(s.config.ACLRefreshPeriod)
	s.logger.Infof("obad: listening on %s", s.config.Listen)

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				s.wg.Wait()
				return nil
			}
			s.logger.Warnf("obad: accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			session.New(conn, s.store, s.aclMgr, s.logger, s.config.NoAuthentication).Serve()
		}()
	}
}

// Stop closes the listener, stops the ACL refresher, and waits for every
// accepted connection's session to end. Open connections are not closed
// by Stop, so it returns only once each client has disconnected, unbound,
// or had its session ended by an error.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	s.aclMgr.Stop()
	if listener != nil {
		listener.Close()
	}
	s.wg.Wait()
}

// serveCmd parses flags, loads configuration, and runs the server until a
// termination signal arrives.
func serveCmd(args []string) int {
	fs := flag.NewFlagSet("obad", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configFile := fs.String("config", "", "path to YAML configuration file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	noAuth := fs.Bool("no-auth", false, "accept every bind without checking credentials (overrides config)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfgMgr := config.NewManager(*configFile, nil)
	cfg, err := cfgMgr.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "obad: %v\n", err)
		return 1
	}

	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *noAuth {
		cfg.NoAuthentication = true
	}

	srv, err := NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "obad: %v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case sig := <-sigCh:
		srv.logger.Infof("obad: received %s, shutting down", sig)
		srv.Stop()
		return 0
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "obad: %v\n", err)
			return 1
		}
		return 0
	}
}
