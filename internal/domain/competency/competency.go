package competency

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

type Competency struct {
	Name       string `yaml:"name" json:"name"`
	Definition string `yaml:"definition" json:"definition"`
}

type Group struct {
	Name         string       `yaml:"name" json:"name"`
	Competencies []Competency `yaml:"competencies" json:"competencies"`
}

type Category struct {
	Name   string  `yaml:"name" json:"name"`
	Groups []Group `yaml:"groups" json:"groups"`
}

// Taxonomy is the closed competency framework. It only feeds pickers,
// prompts and report definitions; stored tags are free text.
type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`

	definitions map[string]string
}

func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse competency taxonomy: %w", err)
	}
	t.definitions = make(map[string]string)
	for _, cat := range t.Categories {
		for _, g := range cat.Groups {
			for _, c := range g.Competencies {
				if _, dup := t.definitions[c.Name]; dup {
					return nil, fmt.Errorf("parse competency taxonomy: duplicate competency %q", c.Name)
				}
				t.definitions[c.Name] = c.Definition
			}
		}
	}
	return &t, nil
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded framework.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(taxonomyYAML)
		if err != nil {
			panic(err)
		}
		defaultTax = t
	})
	return defaultTax
}

// Definition looks a tag up exactly, then ignoring case and surrounding
// space. Unknown tags report false.
func (t *Taxonomy) Definition(tag string) (string, bool) {
	if d, ok := t.definitions[tag]; ok {
		return d, true
	}
	tag = strings.TrimSpace(tag)
	for name, d := range t.definitions {
		if strings.EqualFold(name, tag) {
			return d, true
		}
	}
	return "", false
}

// Names lists every competency in framework order.
func (t *Taxonomy) Names() []string {
	var out []string
	for _, cat := range t.Categories {
		for _, g := range cat.Groups {
			for _, c := range g.Competencies {
				out = append(out, c.Name)
			}
		}
	}
	return out
}

// Sorted is Names in alphabetical order, used by prompts.
func (t *Taxonomy) Sorted() []string {
	out := t.Names()
	sort.Strings(out)
	return out
}

// Filter keeps the candidates that name a known competency, normalised to
// the framework spelling and without duplicates.
func (t *Taxonomy) Filter(candidates []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		for name := range t.definitions {
			if strings.EqualFold(name, c) && !seen[name] {
				seen[name] = true
				out = append(out, name)
				break
			}
		}
	}
	return out
}
