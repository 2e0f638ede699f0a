package mock

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

// Region is a named candidate site.
type Region struct {
	ID   string  `yaml:"id" json:"id"`
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

type regionFile struct {
	Regions  []Region `yaml:"regions"`
	Research []string `yaml:"research"`
}

// Catalog is the fixed pool of regions the generator draws from.
type Catalog struct {
	regions  []Region
	byID     map[string]Region
	research []Region
}

// ParseCatalog decodes a region pool from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f regionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrInvalidCatalog)
	}
	c := &Catalog{
		regions: f.Regions,
		byID:    make(map[string]Region, len(f.Regions)),
	}
	for _, r := range f.Regions {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: region without id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidCatalog, r.ID)
		}
		c.byID[r.ID] = r
	}
	for _, id := range f.Research {
		r, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: research region %q is not in the pool", ErrInvalidCatalog, id)
		}
		c.research = append(c.research, r)
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded region pool.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(regionsYAML)
		if err != nil {
			panic(fmt.Sprintf("mock: embedded regions: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Regions returns the pool in file order.
func (c *Catalog) Regions() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Research returns the curated research set.
func (c *Catalog) Research() []Region {
	out := make([]Region, len(c.research))
	copy(out, c.research)
	return out
}

// Lookup finds a region by id.
func (c *Catalog) Lookup(id string) (Region, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Name returns the display name of a region id.
func (c *Catalog) Name(id string) (string, bool) {
	r, ok := c.byID[id]
	return r.Name, ok
}

// IDs returns all region ids in ascending order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
