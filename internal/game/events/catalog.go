package events

import (
	"fmt"

	"github.com/cory-johannsen/delve/internal/game/rng"
)

// SelectionCriteria is the ephemeral per-poll input to eligibility filtering
// and weighted selection.
type SelectionCriteria struct {
	// TaskType is the task currently in progress.
	TaskType string
	// Context carries the character/task snapshot for condition evaluation.
	Context ConditionContext
	// ExcludeTemplateIDs holds template IDs that already fired this session.
	// Only non-repeatable templates are actually excluded by it.
	ExcludeTemplateIDs map[string]struct{}
	// PreferredSeverity, when non-empty, narrows the eligible pool to that
	// severity — falling back to the full pool when nothing matches.
	PreferredSeverity Severity
}

// CatalogStats summarizes a catalog's contents. Pure aggregation; no hidden
// state.
type CatalogStats struct {
	Total         int
	BySeverity    map[Severity]int
	ByCategory    map[string]int
	Repeatable    int
	NonRepeatable int
}

// Catalog is the immutable, indexed event bank. All indices are built at
// construction; the catalog is read-only thereafter and safe for concurrent
// reads.
type Catalog struct {
	templates []*EventTemplate // authoring order; selection tie-break order
	byID      map[string]*EventTemplate
	bySev     map[Severity][]*EventTemplate
	byCat     map[string][]*EventTemplate
	byTask    map[string][]*EventTemplate
	universal []*EventTemplate // empty applicable_tasks: in every bucket
	eval      ConditionEvaluator
}

// NewCatalog builds a catalog from templates. eval may be nil, in which case
// templates carrying script conditions are never satisfied.
//
// Precondition: every template must pass Validate.
// Postcondition: Returns a catalog with all indices built, or an error on a
// duplicate or invalid template. Template IDs are unique for the catalog's
// lifetime.
func NewCatalog(templates []*EventTemplate, eval ConditionEvaluator) (*Catalog, error) {
	c := &Catalog{
		templates: make([]*EventTemplate, 0, len(templates)),
		byID:      make(map[string]*EventTemplate, len(templates)),
		bySev:     make(map[Severity][]*EventTemplate),
		byCat:     make(map[string][]*EventTemplate),
		byTask:    make(map[string][]*EventTemplate),
		eval:      eval,
	}

	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.templates = append(c.templates, t)
		c.byID[t.ID] = t
		c.bySev[t.Severity] = append(c.bySev[t.Severity], t)
		c.byCat[t.Category] = append(c.byCat[t.Category], t)
		if len(t.ApplicableTasks) == 0 {
			c.universal = append(c.universal, t)
		} else {
			for _, task := range t.ApplicableTasks {
				c.byTask[task] = append(c.byTask[task], t)
			}
		}
	}
	return c, nil
}

// All returns every template in authoring order. The slice is a fresh
// allocation; the pointed-to templates are shared and must not be modified.
func (c *Catalog) All() []*EventTemplate {
	out := make([]*EventTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// BySeverity returns all templates of the given severity.
func (c *Catalog) BySeverity(s Severity) []*EventTemplate {
	return append([]*EventTemplate(nil), c.bySev[s]...)
}

// ByCategory returns all templates tagged with the given category.
func (c *Catalog) ByCategory(category string) []*EventTemplate {
	return append([]*EventTemplate(nil), c.byCat[category]...)
}

// ByTaskType returns all templates applicable to the given task type,
// including every template whose applicable-task set is empty.
//
// Postcondition: templates with an empty ApplicableTasks set appear in the
// result for every task type, known or not.
func (c *Catalog) ByTaskType(taskType string) []*EventTemplate {
	out := append([]*EventTemplate(nil), c.byTask[taskType]...)
	return append(out, c.universal...)
}

// ByID returns the template with the given id, or (nil, false) if not found.
// O(1); never an error.
func (c *Catalog) ByID(id string) (*EventTemplate, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Eligible computes the pool of templates that may fire for the given
// criteria: applicable to the task type, not excluded as an already-fired
// non-repeatable, and with their conditions satisfied against the context.
//
// If PreferredSeverity is set and any eligible template matches it, only
// those are returned; otherwise the full eligible pool is returned — the
// preference narrows but never starves the draw.
//
// Postcondition: the result preserves catalog order; callers must not rely
// on more than that.
func (c *Catalog) Eligible(crit SelectionCriteria) []*EventTemplate {
	var pool []*EventTemplate
	for _, t := range c.templates {
		if !t.IsApplicableTo(crit.TaskType) {
			continue
		}
		if !t.Repeatable {
			if _, fired := crit.ExcludeTemplateIDs[t.ID]; fired {
				continue
			}
		}
		if !t.Conditions.Satisfied(crit.Context, c.eval) {
			continue
		}
		pool = append(pool, t)
	}

	if crit.PreferredSeverity == "" {
		return pool
	}
	var preferred []*EventTemplate
	for _, t := range pool {
		if t.Severity == crit.PreferredSeverity {
			preferred = append(preferred, t)
		}
	}
	if len(preferred) == 0 {
		return pool
	}
	return preferred
}

// SelectRandom performs a weighted random draw over the eligible pool for
// crit: sum all weights, draw a uniform cursor in [0, total), and walk the
// pool in catalog order subtracting each weight until the cursor falls inside
// a template's band. Larger weights win proportionally more often; ties are
// broken by catalog order.
//
// Returns nil when no template is eligible or the pool's total weight is not
// positive — "no event this tick", never an error.
//
// Precondition: src must be non-nil.
func (c *Catalog) SelectRandom(crit SelectionCriteria, src rng.Source) *EventTemplate {
	pool := c.Eligible(crit)
	if len(pool) == 0 {
		return nil
	}

	var total float64
	for _, t := range pool {
		total += t.Weight
	}
	if total <= 0 {
		return nil
	}

	cursor := src.Float64() * total
	for _, t := range pool {
		cursor -= t.Weight
		if cursor < 0 {
			return t
		}
	}
	// Floating-point residue can leave the cursor a hair past the last band.
	return pool[len(pool)-1]
}

// Stats returns aggregate counts over the catalog.
func (c *Catalog) Stats() CatalogStats {
	stats := CatalogStats{
		Total:      len(c.templates),
		BySeverity: make(map[Severity]int),
		ByCategory: make(map[string]int),
	}
	for _, t := range c.templates {
		stats.BySeverity[t.Severity]++
		stats.ByCategory[t.Category]++
		if t.Repeatable {
			stats.Repeatable++
		} else {
			stats.NonRepeatable++
		}
	}
	return stats
}
