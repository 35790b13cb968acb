package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"mob-ledger/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	NametagItem        string         `yaml:"nametag_item"`
	PlayerMarker       string         `yaml:"player_marker"`
	Excluded           []string       `yaml:"excluded"`
	ExcludedSubstrings []string       `yaml:"excluded_substrings"`
	Food               []string       `yaml:"food"`
	Healing            []string       `yaml:"healing"`
	Tameable           []string       `yaml:"tameable"`
	AffinityGain       map[string]int `yaml:"affinity_gain"`
}

// Catalog classifies host entity and item type ids.
type Catalog struct {
	nametagItem        string
	playerMarker       string
	excluded           map[string]struct{}
	excludedSubstrings []string
	food               map[string]struct{}
	healing            map[string]struct{}
	tameable           map[string]struct{}
	gain               map[domain.InteractionKind]int
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file, falling back to the embedded one when path is
// empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog.yaml: %w", err)
	}
	if f.NametagItem == "" {
		return nil, fmt.Errorf("catalog.yaml: nametag_item is required")
	}
	c := &Catalog{
		nametagItem:        f.NametagItem,
		playerMarker:       f.PlayerMarker,
		excluded:           toSet(f.Excluded),
		excludedSubstrings: f.ExcludedSubstrings,
		food:               toSet(f.Food),
		healing:            toSet(f.Healing),
		tameable:           toSet(f.Tameable),
		gain:               make(map[domain.InteractionKind]int),
	}
	if c.playerMarker == "" {
		c.playerMarker = "player"
	}
	for k, v := range f.AffinityGain {
		kind := domain.InteractionKind(k)
		if !kind.Valid() {
			return nil, fmt.Errorf("catalog.yaml: unknown interaction %q in affinity_gain", k)
		}
		c.gain[kind] = v
	}
	return c, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func (c *Catalog) NametagItem() string {
	return c.nametagItem
}

// IsTracked reports whether an entity kind is a creature the ledger keeps a
// record for.
func (c *Catalog) IsTracked(kind string) bool {
	if kind == "" {
		return false
	}
	if _, ok := c.excluded[kind]; ok {
		return false
	}
	for _, sub := range c.excludedSubstrings {
		if strings.Contains(kind, sub) {
			return false
		}
	}
	return true
}

func (c *Catalog) IsPlayer(kind string) bool {
	return strings.Contains(kind, c.playerMarker)
}

func (c *Catalog) IsTameable(kind string) bool {
	_, ok := c.tameable[kind]
	return ok
}

// ClassifyItem maps the item held during an interaction to an interaction
// kind. An empty hand is a pet.
func (c *Catalog) ClassifyItem(itemType string) (domain.InteractionKind, bool) {
	if itemType == "" {
		return domain.InteractionPetted, true
	}
	if _, ok := c.food[itemType]; ok {
		return domain.InteractionFed, true
	}
	if _, ok := c.healing[itemType]; ok {
		return domain.InteractionHealed, true
	}
	return "", false
}

func (c *Catalog) AffinityGain(kind domain.InteractionKind) int {
	return c.gain[kind]
}
