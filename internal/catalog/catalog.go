package catalog

import (
	"fmt"
	"sync"
)

// Question is a single trivia question as authored in a pack file. The
// correct index is never included in public snapshots; only the host
// snapshot and the reveal envelope carry it.
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Choices  []string `json:"choices" yaml:"choices"`
	Correct  int      `json:"correct" yaml:"correct"`
	Value    int      `json:"value" yaml:"value"`
	Hard     bool     `json:"hard,omitempty" yaml:"hard,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Pack groups questions by act id.
type Pack struct {
	ID    string                `json:"id" yaml:"id"`
	Title string                `json:"title" yaml:"title"`
	Acts  map[string][]Question `json:"acts" yaml:"acts"`
}

// PackInfo is the listing shape served by GET /api/packs.
type PackInfo struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions map[string]int `json:"questions"`
}

// Catalog is a read-only view over the loaded packs. Reload swaps the
// whole map, so readers never see a half-loaded pack.
type Catalog struct {
	mu    sync.RWMutex
	packs map[string]*Pack
}

func New() *Catalog {
	return &Catalog{packs: make(map[string]*Pack)}
}

// Pack returns the pack with the given id, or the only loaded pack when
// id is empty and exactly one pack exists.
func (c *Catalog) Pack(id string) (*Pack, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id == "" && len(c.packs) == 1 {
		for _, p := range c.packs {
			return p, true
		}
	}
	p, ok := c.packs[id]
	return p, ok
}

// Questions returns the question list for (packID, actID).
func (c *Catalog) Questions(packID, actID string) ([]Question, bool) {
	p, ok := c.Pack(packID)
	if !ok {
		return nil, false
	}
	qs, ok := p.Acts[actID]
	if !ok || len(qs) == 0 {
		return nil, false
	}
	return qs, true
}

// List returns pack summaries sorted by insertion-independent map walk;
// callers that need stable order sort by ID.
func (c *Catalog) List() []PackInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]PackInfo, 0, len(c.packs))
	for _, p := range c.packs {
		counts := make(map[string]int, len(p.Acts))
		for act, qs := range p.Acts {
			counts[act] = len(qs)
		}
		infos = append(infos, PackInfo{ID: p.ID, Title: p.Title, Questions: counts})
	}
	return infos
}

// Len returns the number of loaded packs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.packs)
}

// replace swaps in a freshly loaded pack set.
func (c *Catalog) replace(packs map[string]*Pack) {
	c.mu.Lock()
	c.packs = packs
	c.mu.Unlock()
}

func validatePack(p *Pack) error {
	if p.ID == "" {
		return fmt.Errorf("pack has no id")
	}
	if len(p.Acts) == 0 {
		return fmt.Errorf("pack %s has no acts", p.ID)
	}
	for act, qs := range p.Acts {
		for i, q := range qs {
			if len(q.Choices) < 2 {
				return fmt.Errorf("pack %s act %s question %d: need at least 2 choices", p.ID, act, i)
			}
			// The wager removal perk takes two wrong choices, so wager
			// questions need at least two wrong ones to take.
			if act == "wager_round" && len(q.Choices) < 3 {
				return fmt.Errorf("pack %s act %s question %d: wager questions need at least 3 choices", p.ID, act, i)
			}
			if q.Correct < 0 || q.Correct >= len(q.Choices) {
				return fmt.Errorf("pack %s act %s question %d: correct index out of range", p.ID, act, i)
			}
			if q.Value < 0 {
				return fmt.Errorf("pack %s act %s question %d: negative value", p.ID, act, i)
			}
		}
	}
	return nil
}
