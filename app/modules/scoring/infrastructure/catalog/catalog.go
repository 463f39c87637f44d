package scoringcatalog

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"gopkg.in/yaml.v3"
)

//go:embed specs/*.yaml
var seeds embed.FS

// ErrNotFound is returned when no spec matches a name and version.
var ErrNotFound = errors.New("game spec not found")

type specKey struct {
	name    string
	version int
}

// Catalog holds validated game specs by name and version. Version 0 in a
// lookup means the newest version of the name.
type Catalog struct {
	mu     sync.RWMutex
	specs  map[specKey]scoringdomain.GameSpec
	latest map[string]int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		specs:  make(map[specKey]scoringdomain.GameSpec),
		latest: make(map[string]int),
	}
}

// NewWithSeeds creates a catalog holding the built-in specs, then any specs
// found in dir. An empty dir loads only the built-ins.
func NewWithSeeds(dir string) (*Catalog, error) {
	c := New()
	if err := c.LoadFS(seeds, "specs"); err != nil {
		return nil, fmt.Errorf("failed to load built-in specs: %w", err)
	}
	if dir != "" {
		if err := c.LoadFS(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("failed to load specs from %s: %w", dir, err)
		}
	}
	return c, nil
}

// LoadFS adds every .yaml and .yml file under root.
func (c *Catalog) LoadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(root, e.Name()))
		if err != nil {
			return err
		}
		spec, err := Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := c.Add(spec); err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return nil
}

// Decode parses one YAML spec document.
func Decode(data []byte) (scoringdomain.GameSpec, error) {
	var spec scoringdomain.GameSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return scoringdomain.GameSpec{}, fmt.Errorf("failed to decode spec: %w", err)
	}
	if typ, ok := scoringdomain.ParseSpecType(string(spec.Type)); ok {
		spec.Type = typ
	}
	return spec, nil
}

// Add validates a spec and stores it, replacing an existing name and version.
func (c *Catalog) Add(spec scoringdomain.GameSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("spec has no name")
	}
	if spec.Version < 1 {
		spec.Version = 1
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[specKey{spec.Name, spec.Version}] = spec.Clone()
	if spec.Version > c.latest[spec.Name] {
		c.latest[spec.Name] = spec.Version
	}
	return nil
}

// Get returns a copy of a spec.
func (c *Catalog) Get(_ context.Context, name string, version int) (*scoringdomain.GameSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if version == 0 {
		version = c.latest[name]
	}
	spec, ok := c.specs[specKey{name, version}]
	if !ok {
		return nil, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
	}
	out := spec.Clone()
	return &out, nil
}

// List returns copies of all specs ordered by name, then version.
func (c *Catalog) List(_ context.Context) ([]scoringdomain.GameSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]scoringdomain.GameSpec, 0, len(c.specs))
	for _, spec := range c.specs {
		out = append(out, spec.Clone())
	}
	slices.SortFunc(out, func(a, b scoringdomain.GameSpec) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.Version, b.Version)
	})
	return out, nil
}
