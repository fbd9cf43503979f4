package skill

import (
	"fmt"
	"sort"
	"strings"
)

// Element is a damage type used for weakness, resistance and immunity checks.
type Element string

const (
	Physical Element = "physical"
	Fire     Element = "fire"
	Ice      Element = "ice"
	Electric Element = "electric"
	Dark     Element = "dark"
	Holy     Element = "holy"
)

var knownElements = map[Element]struct{}{
	Physical: {}, Fire: {}, Ice: {}, Electric: {}, Dark: {}, Holy: {},
}

// ParseElement maps a content name to an Element. Matching is case-insensitive.
func ParseElement(s string) (Element, error) {
	e := Element(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownElements[e]; !ok {
		return "", fmt.Errorf("unknown element %q", s)
	}
	return e, nil
}

// ElementSet is an unordered set of elements.
type ElementSet map[Element]struct{}

// NewElementSet returns a set containing elems.
func NewElementSet(elems ...Element) ElementSet {
	s := make(ElementSet, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// ParseElementSet parses a list of content names into a set.
func ParseElementSet(names []string) (ElementSet, error) {
	s := make(ElementSet, len(names))
	for _, n := range names {
		e, err := ParseElement(n)
		if err != nil {
			return nil, err
		}
		s[e] = struct{}{}
	}
	return s, nil
}

// Has reports whether e is in the set. A nil set contains nothing.
func (s ElementSet) Has(e Element) bool {
	_, ok := s[e]
	return ok
}

// Sorted returns the members in lexical order.
func (s ElementSet) Sorted() []Element {
	out := make([]Element, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
