// Package game loads layered pool configuration from YAML.
package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/casino-core/internal/pool"
)

// Paths helper for default/variant/pool files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/casino/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) GamePath(v pool.Variant) string {
	return filepath.Join(p.BaseDir, "games", string(v)+".yaml")
}
func (p Paths) PoolPath(v pool.Variant, slug string) string {
	return filepath.Join(p.BaseDir, "games", string(v), "pools", slug+".yaml")
}

// Loader reads YAML configs and merges default → variant → pool.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "variant" or "variant/slug"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func cacheKey(v pool.Variant, slug string) string {
	if slug == "" {
		return string(v)
	}
	return string(v) + "/" + slug
}

// LoadMerged loads and merges default → variant → pool (slug optional).
// Every layer is validated on its own before merging.
func (l *Loader) LoadMerged(v pool.Variant, slug string) (RawConfig, error) {
	key := cacheKey(v, slug)
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	if _, err := pool.ParseVariant(string(v)); err != nil {
		return RawConfig{}, err
	}
	defCfg, err := readLayer(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, err
	}
	gameCfg, err := readLayer(l.paths.GamePath(v))
	if err != nil {
		return RawConfig{}, err
	}
	gameMerged := mergeRaw(defCfg, gameCfg)
	merged := gameMerged
	if slug != "" {
		if err := pool.ValidateSlug(slug); err != nil {
			return RawConfig{}, err
		}
		poolCfg, err := readLayer(l.paths.PoolPath(v, slug))
		if err != nil {
			return RawConfig{}, err
		}
		merged = mergeRaw(gameMerged, poolCfg)
	}

	l.mu.Lock()
	// cache the variant-level merge too
	l.cache[cacheKey(v, "")] = gameMerged
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after config files change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

func readLayer(path string) (RawConfig, error) {
	cfg, err := readYAML(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ValidateRaw(cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: any field b sets wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	if b.Pool.MinBet != nil {
		out.Pool.MinBet = b.Pool.MinBet
	}
	if b.Pool.MaxBet != nil {
		out.Pool.MaxBet = b.Pool.MaxBet
	}
	if b.Pool.HouseEdgeBps != nil {
		out.Pool.HouseEdgeBps = b.Pool.HouseEdgeBps
	}
	if b.Pool.PlatformFee != nil {
		out.Pool.PlatformFee = b.Pool.PlatformFee
	}
	if b.Pool.CooldownSeconds != nil {
		out.Pool.CooldownSeconds = b.Pool.CooldownSeconds
	}

	return out
}
