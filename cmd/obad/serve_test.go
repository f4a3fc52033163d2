package main

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/obadir/obad/internal/config"
)

func TestServeCmdInvalidFlag(t *testing.T) {
	if code := serveCmd([]string{"-not-a-flag"}); code != 1 {
		t.Errorf("expected exit code 1 for invalid flag, got %d", code)
	}
}

func TestServeCmdConfigFileNotFound(t *testing.T) {
	if code := serveCmd([]string{"-config", "/nonexistent/obad.yaml"}); code != 1 {
		t.Errorf("expected exit code 1 for missing config file, got %d", code)
	}
}

func TestServeCmdInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obad.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if code := serveCmd([]string{"-config", path}); code != 1 {
		t.Errorf("expected exit code 1 for invalid config, got %d", code)
	}
}

func TestNewServerSeedsAccessRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "acl.rules")
	content := "# comment\nto * by * read\n\nto * by self write\n"
	if err := os.WriteFile(rulesPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Storage.SeedRulesFile = rulesPath

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rules, err := srv.store.AccessRules()
	if err != nil {
		t.Fatalf("AccessRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d: %v", len(rules), rules)
	}
}

func TestServerStartAcceptsConnectionsThenStops(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.NoAuthentication = true

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	// Start on an ephemeral port directly, since Server.Start doesn't
	// expose the bound address until after net.Listen succeeds.
	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()
	cfg.Listen = addr

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Give the accept loop a moment to bind before connecting.
	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	srv.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error after Stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
