// Package catalog loads the curated list of API projects shown by folio.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apifolio/folio/internal/state"
)

//go:embed default.yaml
var defaultCatalog []byte

// Project is one entry of the catalog.
type Project struct {
	ID             string       `yaml:"id" json:"id"`
	Name           string       `yaml:"name" json:"name"`
	Description    string       `yaml:"description" json:"description"`
	Category       string       `yaml:"category" json:"category"`
	Status         state.Status `yaml:"status" json:"status"`
	ResponseTimeMs int64        `yaml:"response_time_ms" json:"responseTime"`
	Tech           []string     `yaml:"tech" json:"tech"`
	Features       []string     `yaml:"features" json:"features"`
	Documentation  string       `yaml:"documentation" json:"documentation"`
	GitHub         string       `yaml:"github" json:"github"`
}

// Catalog is an ordered list of projects with unique IDs.
type Catalog struct {
	Projects []Project `yaml:"projects" json:"projects"`
}

// Default returns the embedded catalog.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a YAML catalog from path. An empty path returns Default.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks IDs are present and unique and statuses are known. A
// missing status is treated as offline.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Projects))
	var errs []error
	for i := range c.Projects {
		p := &c.Projects[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("project %d: id is required", i))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("project %q: duplicate id", p.ID))
		}
		seen[p.ID] = true
		if p.Status == "" {
			p.Status = state.StatusOffline
		}
		if !p.Status.Valid() {
			errs = append(errs, fmt.Errorf("project %q: unknown status %q", p.ID, p.Status))
		}
	}
	return errors.Join(errs...)
}

// Descriptors maps the catalog onto store descriptors, preserving order.
func (c Catalog) Descriptors() []state.APIDescriptor {
	out := make([]state.APIDescriptor, 0, len(c.Projects))
	for _, p := range c.Projects {
		out = append(out, state.APIDescriptor{
			ID:             p.ID,
			Name:           p.Name,
			Status:         p.Status,
			ResponseTimeMs: p.ResponseTimeMs,
		})
	}
	return out
}

// Lookup returns the project with id.
func (c Catalog) Lookup(id string) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Categories returns the distinct categories in first-seen order.
func (c Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.Projects {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
