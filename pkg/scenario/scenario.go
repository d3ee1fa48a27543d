// Package scenario describes scripted list workloads in YAML and replays them
// against a ListView, recording what every step did to the row pool.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// DefaultTemplate is used for items that name no template.
const DefaultTemplate = "line"

// Sentinel errors.
var (
	ErrInvalidScenario   = errors.New("invalid scenario")
	ErrInvalidStep       = errors.New("invalid step")
	ErrExpectationFailed = errors.New("expectation failed")
)

//go:embed schema.json
var schemaJSON []byte

// Scenario is a named sequence of steps over an initial item list.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Viewport    Viewport `yaml:"viewport"`
	Items       []Item   `yaml:"items"`
	Steps       []Step   `yaml:"steps"`
}

// Viewport is the visible area the list is laid out in.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Item is one list element.
type Item struct {
	Key      string `yaml:"key"`
	Size     int    `yaml:"size"`
	Template string `yaml:"template,omitempty"`
}

// TemplateID returns the item's template, DefaultTemplate when unset.
func (it Item) TemplateID() string {
	if it.Template == "" {
		return DefaultTemplate
	}

	return it.Template
}

// Step is exactly one operation.
type Step struct {
	Render *RenderStep `yaml:"render,omitempty"`
	Scroll *ScrollStep `yaml:"scroll,omitempty"`
	Splice *SpliceStep `yaml:"splice,omitempty"`
	Expect *Expect     `yaml:"expect,omitempty"`
}

// RenderStep renders the window [Top, Top+Height).
type RenderStep struct {
	Top    int `yaml:"top"`
	Height int `yaml:"height"`
}

// ScrollStep moves the window to an absolute top or by a delta, clamped to
// the content.
type ScrollStep struct {
	To *int `yaml:"to,omitempty"`
	By *int `yaml:"by,omitempty"`
}

// SpliceStep removes Delete items at Start and inserts Items.
type SpliceStep struct {
	Start  int    `yaml:"start"`
	Delete int    `yaml:"delete,omitempty"`
	Items  []Item `yaml:"items,omitempty"`
}

// Expect checks the list state. Unset fields are not checked.
type Expect struct {
	Rendered      []int    `yaml:"rendered,omitempty"`
	Rows          []string `yaml:"rows,omitempty"`
	Keys          []string `yaml:"keys,omitempty"`
	ContentHeight *int     `yaml:"content_height,omitempty"`
	LiveRows      *int     `yaml:"live_rows,omitempty"`
}

// Op names the step's operation.
func (s Step) Op() string {
	switch {
	case s.Render != nil:
		return "render"
	case s.Scroll != nil:
		return "scroll"
	case s.Splice != nil:
		return "splice"
	case s.Expect != nil:
		return "expect"
	default:
		return "noop"
	}
}

// Parse decodes a YAML scenario and validates it against the embedded schema.
// Schema violations are reported together, wrapped in ErrInvalidScenario.
func Parse(data []byte) (*Scenario, error) {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.Field()+": "+verr.Description())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidScenario, strings.Join(msgs, "; "))
	}

	var sc Scenario

	err = yaml.Unmarshal(data, &sc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	return &sc, nil
}

// Templates returns the template ids, in order of first use, referenced anywhere
// in the scenario, DefaultTemplate included.
func (sc *Scenario) Templates() []string {
	seen := map[string]bool{DefaultTemplate: true}
	out := []string{DefaultTemplate}

	add := func(items []Item) {
		for _, it := range items {
			if id := it.TemplateID(); !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	add(sc.Items)

	for _, step := range sc.Steps {
		if step.Splice != nil {
			add(step.Splice.Items)
		}
	}

	return out
}
