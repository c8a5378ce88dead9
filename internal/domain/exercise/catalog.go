package exercise

import (
	"fmt"
)

// Catalog is the read-only exercise reference table. It is built once at
// startup and shared between requests; nothing mutates it after NewCatalog
// returns, so concurrent reads need no locking.
type Catalog struct {
	byName map[string]Reference
	order  []string
}

// NewCatalog indexes refs by name. Later duplicates replace earlier ones but
// keep the position of the first occurrence.
func NewCatalog(refs []Reference) *Catalog {
	c := &Catalog{
		byName: make(map[string]Reference, len(refs)),
		order:  make([]string, 0, len(refs)),
	}
	for _, ref := range refs {
		if _, ok := c.byName[ref.Name]; !ok {
			c.order = append(c.order, ref.Name)
		}
		if ref.Category == "" {
			ref.Category = General
		}
		c.byName[ref.Name] = ref
	}
	return c
}

func (c *Catalog) Lookup(name string) (Reference, bool) {
	ref, ok := c.byName[name]
	return ref, ok
}

func (c *Catalog) List() []Reference {
	refs := make([]Reference, 0, len(c.order))
	for _, name := range c.order {
		refs = append(refs, c.byName[name])
	}
	return refs
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func (c *Catalog) CaloriesBurned(name string, weightKg float64, durationMinutes float64) (float64, error) {
	ref, ok := c.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}
	return ref.CaloriesBurned(weightKg, durationMinutes), nil
}
