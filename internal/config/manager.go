package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/obadir/obad/internal/logging"
	"gopkg.in/yaml.v3"
)

// Watcher is notified when the configuration is reloaded.
type Watcher interface {
	OnConfigUpdate(oldConfig, newConfig *Config)
}

// Manager loads configuration from a YAML file and optionally watches it
// for changes, polling rather than using an OS-level file-change
// notifier, per the pack's ConfigManager.
type Manager struct {
	path   string
	logger logging.Logger

	mu     sync.RWMutex
	config *Config

	watchersMu sync.RWMutex
	watchers   []Watcher

	modTime  time.Time
	stopChan chan struct{}
}

// NewManager constructs a Manager for the YAML file at path. An empty
// path means Load always returns DefaultConfig.
func NewManager(path string, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Manager{path: path, logger: logger, stopChan: make(chan struct{})}
}

// Load reads and validates the configuration file, or returns
// DefaultConfig when no path was given.
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		cfg := DefaultConfig()
		m.config = cfg
		return cfg, nil
	}

	info, err := os.Stat(m.path)
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", m.path, err)
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", m.path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", m.path, err)
	}
	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	m.config = cfg
	m.modTime = info.ModTime()
	m.logger.Infof("loaded configuration from %s", m.path)
	return cfg, nil
}

// Current returns the most recently loaded configuration.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// AddWatcher registers w to be notified on reload.
func (m *Manager) AddWatcher(w Watcher) {
	m.watchersMu.Lock()
	defer m.watchersMu.Unlock()
	m.watchers = append(m.watchers, w)
}

// Watch polls the configuration file every interval and reloads it when
// its modification time advances, notifying watchers of the change. It
// blocks until Stop is called.
func (m *Manager) Watch(interval time.Duration) {
	if m.path == "" {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkForChange()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) checkForChange() {
	info, err := os.Stat(m.path)
	if err != nil {
		m.logger.Errorf("config: stat %s: %v", m.path, err)
		return
	}

	m.mu.RLock()
	last := m.modTime
	m.mu.RUnlock()
	if !info.ModTime().After(last) {
		return
	}

	old := m.Current()
	next, err := m.Load()
	if err != nil {
		m.logger.Errorf("config: reload failed: %v", err)
		return
	}

	m.watchersMu.RLock()
	watchers := make([]Watcher, len(m.watchers))
	copy(watchers, m.watchers)
	m.watchersMu.RUnlock()

	for _, w := range watchers {
		w.OnConfigUpdate(old, next)
	}
}

// Stop ends a running Watch loop.
func (m *Manager) Stop() {
	close(m.stopChan)
}
