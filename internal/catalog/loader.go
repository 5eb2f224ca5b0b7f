package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load populates the catalog from the embedded default pack plus any
// .json/.yaml pack files found in dir. dir may be empty or missing; the
// embedded pack alone is enough to run. Called once at boot and again by
// the dev reload endpoint.
func (c *Catalog) Load(embedded []byte, dir string) error {
	packs := make(map[string]*Pack)

	if len(embedded) > 0 {
		p, err := decodePack(embedded, "json")
		if err != nil {
			return fmt.Errorf("embedded pack: %w", err)
		}
		packs[p.ID] = p
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("reading packs dir %s: %w", dir, err)
			}
		} else {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
				if ext != "json" && ext != "yaml" && ext != "yml" {
					continue
				}
				data, err := os.ReadFile(filepath.Join(dir, e.Name()))
				if err != nil {
					return fmt.Errorf("reading pack %s: %w", e.Name(), err)
				}
				p, err := decodePack(data, ext)
				if err != nil {
					return fmt.Errorf("pack %s: %w", e.Name(), err)
				}
				// Files on disk override the embedded pack on id collision.
				packs[p.ID] = p
			}
		}
	}

	if len(packs) == 0 {
		return fmt.Errorf("no question packs loaded")
	}

	c.replace(packs)
	return nil
}

func decodePack(data []byte, ext string) (*Pack, error) {
	p := &Pack{}
	var err error
	switch ext {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, p)
	default:
		err = json.Unmarshal(data, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse pack: %w", err)
	}
	if err := validatePack(p); err != nil {
		return nil, err
	}
	return p, nil
}
