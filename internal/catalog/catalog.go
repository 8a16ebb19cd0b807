// Package catalog loads the fixed base inventory and the keyword vocabulary used to find it in free text.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Keyword binds one lowercase search phrase to the catalog item it stands for.
type Keyword struct {
	Phrase string
	Item   domain.CatalogItem
}

// Catalog is the read-only base inventory. It is safe for concurrent use.
type Catalog struct {
	items      []domain.CatalogItem
	byID       map[int]domain.CatalogItem
	vocabulary []Keyword
}

type catalogFile struct {
	Items []domain.CatalogItem `yaml:"items"`
}

// Default returns the embedded base inventory.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file from path. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("catalog has no items")
	}

	c := &Catalog{
		items: make([]domain.CatalogItem, 0, len(file.Items)),
		byID:  make(map[int]domain.CatalogItem, len(file.Items)),
	}
	for _, item := range file.Items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("catalog item id %d is duplicated", item.ID)
		}

		keywords := item.Keywords
		if len(keywords) == 0 {
			keywords = []string{item.Name}
		}
		for _, kw := range keywords {
			phrase := strings.ToLower(strings.TrimSpace(kw))
			if phrase == "" {
				continue
			}
			c.vocabulary = append(c.vocabulary, Keyword{Phrase: phrase, Item: item})
		}

		c.items = append(c.items, item)
		c.byID[item.ID] = item
	}
	return c, nil
}

func validateItem(item domain.CatalogItem) error {
	switch {
	case item.ID <= 0:
		return fmt.Errorf("catalog item %q: id must be positive", item.Name)
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("catalog item %d: name is required", item.ID)
	case item.WeightKg <= 0:
		return fmt.Errorf("catalog item %q: weight must be positive", item.Name)
	case !item.Category.Valid():
		return fmt.Errorf("catalog item %q: unknown category %q", item.Name, item.Category)
	}
	return nil
}

// Items returns the catalog in file order.
func (c *Catalog) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks an item up by id.
func (c *Catalog) Get(id int) (domain.CatalogItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Names returns every item name, used as the "known" phrase set.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.items))
	for i, item := range c.items {
		names[i] = item.Name
	}
	return names
}

// Vocabulary returns the ordered keyword list.
func (c *Catalog) Vocabulary() []Keyword {
	out := make([]Keyword, len(c.vocabulary))
	copy(out, c.vocabulary)
	return out
}
