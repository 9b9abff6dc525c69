package bankimport

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Rule is one auto-categorization rule as the engine sees it.
type Rule struct {
	Priority     int
	Contains     []string
	CategoryID   string
	CategoryName string
}

// CategoryRef is the part of a category the engine resolves against.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
}

// Engine assigns categories by first-match over priority-ordered rules.
// Build one per import; it is read-only afterwards and safe to share.
type Engine struct {
	rules  []Rule
	byName map[string]uuid.UUID
	owned  map[uuid.UUID]struct{}
}

// NewEngine copies the rules, orders them by ascending priority (stable for
// ties) and indexes the entity's categories by lowercase name.
func NewEngine(rules []Rule, categories []CategoryRef) *Engine {
	ordered := make([]Rule, 0, len(rules))
	for _, r := range rules {
		tokens := make([]string, 0, len(r.Contains))
		for _, token := range r.Contains {
			tokens = append(tokens, strings.ToLower(token))
		}
		r.Contains = tokens
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	e := &Engine{
		rules:  ordered,
		byName: make(map[string]uuid.UUID, len(categories)),
		owned:  make(map[uuid.UUID]struct{}, len(categories)),
	}
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if _, dup := e.byName[name]; !dup {
			e.byName[name] = c.ID
		}
		e.owned[c.ID] = struct{}{}
	}
	return e
}

// Categorize returns the category for a transaction description, or nil.
// The first rule whose substrings match ends the scan even when its action
// cannot be resolved to one of the entity's categories.
func (e *Engine) Categorize(description string) *uuid.UUID {
	description = strings.ToLower(description)

	for _, rule := range e.rules {
		if len(rule.Contains) == 0 || !containsAny(description, rule.Contains) {
			continue
		}
		return e.resolve(rule)
	}
	return nil
}

func (e *Engine) resolve(rule Rule) *uuid.UUID {
	if rule.CategoryID != "" {
		id, err := uuid.Parse(rule.CategoryID)
		if err != nil {
			return nil
		}
		// a category from another entity must never be attached
		if _, ok := e.owned[id]; !ok {
			return nil
		}
		return &id
	}
	if rule.CategoryName != "" {
		if id, ok := e.byName[strings.ToLower(rule.CategoryName)]; ok {
			return &id
		}
	}
	return nil
}

func containsAny(description string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(description, token) {
			return true
		}
	}
	return false
}
