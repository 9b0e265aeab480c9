package game

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// GameConf holds game-level configuration parameters, loaded from YAML.
type GameConf struct {
	// --- Identity ---
	MudName string `yaml:"mud_name"`

	// --- Data paths ---
	BoltPath   string `yaml:"bolt_path"`
	FamilyDB   string `yaml:"family_db"`
	SQLTimeout int    `yaml:"sql_timeout"` // busy timeout in seconds

	// --- Requests ---
	RetentionDays int `yaml:"retention_days"` // archived request retention

	// --- Guest ---
	GuestsEnabled     bool   `yaml:"guests_enabled"`
	GuestBasename     string `yaml:"guest_basename"`
	GuestPrefixes     string `yaml:"guest_prefixes"`
	NumberGuests      int    `yaml:"number_guests"`
	GuestPasswordHash string `yaml:"guest_password_hash"` // bcrypt hash of the shared guest password

	// --- Metrics ---
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`
}

// DefaultGameConf returns a GameConf with usable defaults.
func DefaultGameConf() *GameConf {
	return &GameConf{
		MudName:       "Emberfall",
		BoltPath:      "data/emberfall.db",
		FamilyDB:      "data/family.db",
		SQLTimeout:    5,
		RetentionDays: 30,
		GuestsEnabled: true,
		GuestBasename: "Guest",
		NumberGuests:  30,
		MetricsPort:   9300,
	}
}

// LoadGameConf loads a YAML config file over the defaults.
func LoadGameConf(path string) (*GameConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	gc := DefaultGameConf()
	if err := yaml.Unmarshal(data, gc); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	return gc, nil
}

// confMu guards hot swaps of the live config.
var confMu sync.RWMutex

// GameConf returns the current live config.
func (g *Game) GameConf() *GameConf {
	confMu.RLock()
	defer confMu.RUnlock()
	return g.Conf
}

// applyConf swaps in a reloaded config. Only fields that are safe to change
// at runtime take effect; data paths keep their boot-time values.
func (g *Game) applyConf(gc *GameConf) {
	confMu.Lock()
	defer confMu.Unlock()
	gc.BoltPath = g.Conf.BoltPath
	gc.FamilyDB = g.Conf.FamilyDB
	gc.MetricsPort = g.Conf.MetricsPort
	g.Conf = gc
	log.Printf("game: config applied: mud_name=%q retention_days=%d guests=%v",
		gc.MudName, gc.RetentionDays, gc.GuestsEnabled)
}

// WatchConf starts an fsnotify watcher on the config file. When the file
// changes it is re-read and the hot-reloadable fields applied.
func (g *Game) WatchConf(path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WARNING: Could not start config watcher: %v", err)
		return
	}

	base := filepath.Base(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				gc, err := LoadGameConf(path)
				if err != nil {
					log.Printf("game: config reload failed: %v", err)
					continue
				}
				g.applyConf(gc)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("game: config watcher error: %v", err)
			}
		}
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Printf("WARNING: Could not watch config directory %s: %v", filepath.Dir(path), err)
		watcher.Close()
		return
	}
	log.Printf("game: watching config file for changes: %s", path)
}
