package shop

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the enumeration of valid material identifiers. Pool entries
// must resolve against it before they are accepted; anything else is an
// ErrInvalidItemKind at the boundary, not a loosely-typed map propagated
// through the system.
type Catalog struct {
	kinds map[string]struct{}
}

// catalogFile is the on-disk YAML shape: a single top-level `materials` list.
type catalogFile struct {
	Materials []string `yaml:"materials"`
}

// NewCatalog builds a catalog from a list of material identifiers.
// Identifiers are case-insensitive and stored upper-cased.
func NewCatalog(materials []string) *Catalog {
	kinds := make(map[string]struct{}, len(materials))
	for _, m := range materials {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			kinds[m] = struct{}{}
		}
	}
	return &Catalog{kinds: kinds}
}

// LoadCatalog reads the material catalog from a YAML file.
// An empty or missing materials list is an error: a shop with no valid
// kinds can never accept a pool entry.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read material catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse material catalog %q: %w", path, err)
	}

	c := NewCatalog(f.Materials)
	if len(c.kinds) == 0 {
		return nil, fmt.Errorf("material catalog %q lists no materials", path)
	}
	return c, nil
}

// Resolve validates a material identifier against the catalog and returns
// its canonical (upper-cased) form, or ErrInvalidItemKind.
func (c *Catalog) Resolve(material string) (string, error) {
	canonical := strings.ToUpper(strings.TrimSpace(material))
	if _, ok := c.kinds[canonical]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemKind, material)
	}
	return canonical, nil
}

// Materials returns the catalog contents in sorted order.
func (c *Catalog) Materials() []string {
	out := make([]string, 0, len(c.kinds))
	for m := range c.kinds {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
