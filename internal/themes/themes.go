// Package themes holds the immutable visual theme catalog. Themes are data,
// not behavior: the renderer reads font, size and color roles from the
// selected theme and never mutates it. There is deliberately no process-wide
// "current theme"; callers pass the selected theme through explicitly.
package themes

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

const FallbackKey = "minimal"

type Fonts struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Accent    string `yaml:"accent"`
}

// Sizes are font sizes in points per text role.
type Sizes struct {
	Title   int `yaml:"title"`
	H2      int `yaml:"h2"`
	Bullet  int `yaml:"bullet"`
	Caption int `yaml:"caption"`
}

// Colors are hex RGB values without a leading '#'.
type Colors struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Accent     string `yaml:"accent"`
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Muted      string `yaml:"muted"`
}

type Design struct {
	UseShadows            bool   `yaml:"useShadows"`
	UseGradients          bool   `yaml:"useGradients"`
	UseDecorativeElements bool   `yaml:"useDecorativeElements"`
	BorderRadius          int    `yaml:"borderRadius"`
	Spacing               string `yaml:"spacing"`
	VisualWeight          string `yaml:"visualWeight"`
}

type Theme struct {
	Key    string `yaml:"-"`
	Name   string `yaml:"name"`
	Fonts  Fonts  `yaml:"fonts"`
	Sizes  Sizes  `yaml:"sizes"`
	Colors Colors `yaml:"colors"`
	Design Design `yaml:"design"`
}

var (
	catalog map[string]Theme
	keys    []string
)

func init() {
	if err := loadCatalog(catalogYAML); err != nil {
		panic(fmt.Sprintf("themes: bad embedded catalog: %v", err))
	}
}

func loadCatalog(raw []byte) error {
	parsed := map[string]Theme{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	if _, ok := parsed[FallbackKey]; !ok {
		return fmt.Errorf("catalog is missing the %q fallback theme", FallbackKey)
	}
	catalog = make(map[string]Theme, len(parsed))
	keys = make([]string, 0, len(parsed))
	for key, t := range parsed {
		t.Key = key
		catalog[key] = t
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return nil
}

// Get returns the theme for key, falling back to minimal for unknown keys.
// It never errors so rendering cannot fail on a stale stored theme name.
func Get(key string) Theme {
	if t, ok := catalog[key]; ok {
		return t
	}
	return catalog[FallbackKey]
}

func Exists(key string) bool {
	_, ok := catalog[key]
	return ok
}

// RandomKey picks any catalog key. Callers pin the result for the whole
// document before rendering starts.
func RandomKey() string {
	return keys[rand.Intn(len(keys))]
}

// Keys returns all catalog keys in sorted order.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
