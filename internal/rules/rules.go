// Package rules holds the per-language comment rule table.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/dlclark/regexp2"
)

var (
	// ErrUnknownLanguage indicates that no rules are defined for a language.
	ErrUnknownLanguage = errors.New("no comment rules defined for language")
	// ErrUnknownAlias indicates an alias pointing at a missing entry.
	ErrUnknownAlias = errors.New("alias refers to unknown language")
	// ErrAliasCycle indicates an alias chain that never reaches a rule set.
	ErrAliasCycle = errors.New("alias cycle")
	// ErrEmptyRuleSet indicates a rule set without any rules.
	ErrEmptyRuleSet = errors.New("rule set has no rules")
)

// Kind distinguishes block comments from line comments.
type Kind int

const (
	// Block comments have distinct start and end markers and may span lines.
	Block Kind = iota
	// Line comments run from a marker to the end of the line.
	Line
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "block"
	case Line:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule matches one kind of comment.
type Rule struct {
	Kind    Kind
	Pattern *regexp2.Regexp
}

// Entry is either a rule set or an alias of another language.
type Entry struct {
	rules []Rule
	alias string
}

// RuleSet returns an entry holding the given rules in application order.
func RuleSet(rules ...Rule) Entry {
	return Entry{rules: rules}
}

// AliasOf returns an entry that reuses the rules of another language.
func AliasOf(id string) Entry {
	return Entry{alias: id}
}

// IsAlias reports whether the entry refers to another language.
func (e Entry) IsAlias() bool {
	return e.alias != ""
}

// Target returns the aliased language id, or "" for a rule set.
func (e Entry) Target() string {
	return e.alias
}

// Rules returns the entry's own rules; nil for aliases.
func (e Entry) Rules() []Rule {
	return e.rules
}

// Table maps language ids to their entries.
type Table map[string]Entry

// Resolve returns the rules for a language, following aliases.
// The returned slice is a copy and may be reordered by the caller.
func (t Table) Resolve(id string) ([]Rule, error) {
	visited := make(map[string]bool)
	current := id

	for {
		entry, ok := t[current]
		if !ok {
			if current == id {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, id)
			}
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownAlias, id, current)
		}

		if !entry.IsAlias() {
			return slices.Clone(entry.rules), nil
		}

		visited[current] = true
		current = entry.alias
		if visited[current] {
			return nil, fmt.Errorf("%w: %s -> %s", ErrAliasCycle, id, current)
		}
	}
}

// Has reports whether the language resolves to a rule set.
func (t Table) Has(id string) bool {
	_, err := t.Resolve(id)
	return err == nil
}

// Validate checks that every alias resolves and every rule set is non-empty.
func (t Table) Validate() error {
	var errs []error
	for _, id := range t.IDs() {
		entry := t[id]
		if !entry.IsAlias() && len(entry.rules) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptyRuleSet, id))
			continue
		}
		if _, err := t.Resolve(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IDs returns every accepted language id, aliases included, sorted.
func (t Table) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Aliases returns the alias ids, sorted.
func (t Table) Aliases() []string {
	var ids []string
	for _, id := range t.IDs() {
		if t[id].IsAlias() {
			ids = append(ids, id)
		}
	}
	return ids
}
