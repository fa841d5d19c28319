package tablecfg

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/table/variant files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/craps/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "tables", "default.yaml")
}
func (p Paths) TablePath(table string) string {
	return filepath.Join(p.BaseDir, "tables", table+".yaml")
}
func (p Paths) VariantPath(table, variant string) string {
	return filepath.Join(p.BaseDir, "tables", table, "variants", variant+".yaml")
}

// Files lists every file that feeds the merged config for table/variant.
func (p Paths) Files(table, variant string) []string {
	files := []string{p.DefaultPath()}
	if table != "" {
		files = append(files, p.TablePath(table))
	}
	if table != "" && variant != "" {
		files = append(files, p.VariantPath(table, variant))
	}
	return files
}

// All lists every YAML file under the tables directory.
func (p Paths) All() ([]string, error) {
	var files []string
	root := filepath.Join(p.BaseDir, "tables")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

var ErrBadName = errors.New("table and variant names must be plain file names")

// Loader reads YAML configs and merges default → table → variant.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "table" or "table/variant"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → table → variant (both optional).
// It returns the merged RawConfig without normalization. The default file
// must exist; table and variant files may not.
func (l *Loader) LoadMerged(table, variant string) (RawConfig, error) {
	if err := checkName(table); err != nil {
		return RawConfig{}, err
	}
	if err := checkName(variant); err != nil {
		return RawConfig{}, err
	}
	key := table
	if variant != "" {
		key = table + "/" + variant
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	if _, err := os.Stat(l.paths.DefaultPath()); err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	var tableCfg, variantCfg RawConfig
	if table != "" {
		if tableCfg, err = readYAML(l.paths.TablePath(table)); err != nil {
			return RawConfig{}, fmt.Errorf("read table %s: %w", table, err)
		}
	}
	if table != "" && variant != "" {
		if variantCfg, err = readYAML(l.paths.VariantPath(table, variant)); err != nil {
			return RawConfig{}, fmt.Errorf("read variant %s/%s: %w", table, variant, err)
		}
	}

	tableMerged := mergeRaw(defCfg, tableCfg)
	merged := mergeRaw(tableMerged, variantCfg)

	l.mu.Lock()
	l.cache[table] = tableMerged
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

func checkName(s string) error {
	if s == "" {
		return nil
	}
	if s != filepath.Base(s) || s == "." || s == ".." {
		return fmt.Errorf("%w: %q", ErrBadName, s)
	}
	return nil
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
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Odds multiples merge per point; everything else replaces.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// limits
	if b.Limits.Minimum != nil {
		out.Limits.Minimum = b.Limits.Minimum
	}
	if b.Limits.Maximum != nil {
		out.Limits.Maximum = b.Limits.Maximum
	}
	if b.Limits.Unit != nil {
		out.Limits.Unit = b.Limits.Unit
	}

	// field
	switch {
	case out.Field == nil && b.Field != nil:
		c := *b.Field
		out.Field = &c
	case out.Field != nil && b.Field != nil:
		c := *out.Field
		if b.Field.Two != "" {
			c.Two = b.Field.Two
		}
		if b.Field.Twelve != "" {
			c.Twelve = b.Field.Twelve
		}
		out.Field = &c
	}

	// ats
	switch {
	case out.ATS == nil && b.ATS != nil:
		c := *b.ATS
		out.ATS = &c
	case out.ATS != nil && b.ATS != nil:
		c := *out.ATS
		if b.ATS.Small != "" {
			c.Small = b.ATS.Small
		}
		if b.ATS.Tall != "" {
			c.Tall = b.ATS.Tall
		}
		if b.ATS.All != "" {
			c.All = b.ATS.All
		}
		out.ATS = &c
	}

	// odds
	if b.Odds != nil {
		m := make(map[int]int64)
		if out.Odds != nil {
			maps.Copy(m, out.Odds.Multiples)
		}
		maps.Copy(m, b.Odds.Multiples)
		out.Odds = &OddsConfig{Multiples: m}
	}

	if b.Vig != nil && b.Vig.Percent != nil {
		out.Vig = &VigConfig{Percent: b.Vig.Percent}
	}
	if b.Winners != nil && b.Winners.LeaveUp != nil {
		out.Winners = &WinnerConfig{LeaveUp: b.Winners.LeaveUp}
	}

	return out
}
