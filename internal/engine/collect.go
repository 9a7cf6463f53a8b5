package engine

import "github.com/hanpama/gqlmodel/internal/language"

// collectedSelections preserves selection order from the original document
// while grouping fields that share a response key.
type collectedSelections struct {
	selections language.SelectionSet
	fields     map[string]int
	spreads    map[string]bool
}

func newCollectedSelections(n int) *collectedSelections {
	return &collectedSelections{
		selections: make(language.SelectionSet, 0, n),
		fields:     make(map[string]int),
		spreads:    make(map[string]bool),
	}
}

func (c *collectedSelections) add(sel language.Selection) {
	switch sel := sel.(type) {
	case *language.Field:
		key := language.ResponseKey(sel)
		idx, exists := c.fields[key]
		if !exists {
			c.fields[key] = len(c.selections)
			c.selections = append(c.selections, sel)
			return
		}
		// Merge into a copy; the document itself stays untouched.
		prev := c.selections[idx].(*language.Field)
		merged := *prev
		merged.SelectionSet = make(language.SelectionSet, 0, len(prev.SelectionSet)+len(sel.SelectionSet))
		merged.SelectionSet = append(merged.SelectionSet, prev.SelectionSet...)
		merged.SelectionSet = append(merged.SelectionSet, sel.SelectionSet...)
		c.selections[idx] = &merged
	case *language.FragmentSpread:
		if c.spreads[sel.Name] {
			return
		}
		c.spreads[sel.Name] = true
		c.selections = append(c.selections, sel)
	default:
		c.selections = append(c.selections, sel)
	}
}

// collectSelections merges fields with the same response key and drops
// repeated spreads of one fragment. First-seen order is kept.
func collectSelections(set language.SelectionSet) language.SelectionSet {
	c := newCollectedSelections(len(set))
	for _, sel := range set {
		c.add(sel)
	}
	return c.selections
}

// singleSpread returns the only selection of set when it is a fragment spread.
func singleSpread(set language.SelectionSet) *language.FragmentSpread {
	if len(set) != 1 {
		return nil
	}
	spread, _ := set[0].(*language.FragmentSpread)
	return spread
}
