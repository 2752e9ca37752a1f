package model

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// LabelSet is the deduplicated set of class labels seen in one frame.
// The zero value is an empty set.
type LabelSet struct {
	labels map[string]struct{}
}

// NewLabelSet builds a set from labels; order and duplicates are irrelevant.
func NewLabelSet(labels ...string) LabelSet {
	set := LabelSet{labels: make(map[string]struct{}, len(labels))}
	for _, label := range lo.Uniq(labels) {
		set.labels[label] = struct{}{}
	}
	return set
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	_, ok := s.labels[label]
	return ok
}

// Equal reports set equality.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s.labels) != len(other.labels) {
		return false
	}
	for label := range s.labels {
		if _, ok := other.labels[label]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []string {
	labels := lo.Keys(s.labels)
	sort.Strings(labels)
	return labels
}

// Added returns the labels present in s but not in previous, sorted.
func (s LabelSet) Added(previous LabelSet) []string {
	return lo.Filter(s.Sorted(), func(label string, _ int) bool {
		return !previous.Contains(label)
	})
}

// Removed returns the labels present in previous but not in s, sorted.
func (s LabelSet) Removed(previous LabelSet) []string {
	return previous.Added(s)
}

// String formats the set as {a, b}; the empty set prints as {}.
func (s LabelSet) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}
