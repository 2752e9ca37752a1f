package model

import (
	"testing"
)

func TestLabelSet_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a, b  LabelSet
		equal bool
	}{
		{"both empty", NewLabelSet(), NewLabelSet(), true},
		{"zero value equals empty", LabelSet{}, NewLabelSet(), true},
		{"same single", NewLabelSet("person"), NewLabelSet("person"), true},
		{"reordered", NewLabelSet("person", "dog"), NewLabelSet("dog", "person"), true},
		{"duplicates ignored", NewLabelSet("person", "person", "dog"), NewLabelSet("dog", "person"), true},
		{"empty vs non-empty", NewLabelSet(), NewLabelSet("person"), false},
		{"subset", NewLabelSet("person"), NewLabelSet("person", "dog"), false},
		{"same size different members", NewLabelSet("cat"), NewLabelSet("dog"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
			if got := tt.b.Equal(tt.a); got != tt.equal {
				t.Errorf("%v.Equal(%v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.equal)
			}
		})
	}
}

func TestLabelSet_String(t *testing.T) {
	tests := []struct {
		set      LabelSet
		expected string
	}{
		{LabelSet{}, "{}"},
		{NewLabelSet("person"), "{person}"},
		{NewLabelSet("person", "dog", "person"), "{dog, person}"},
	}

	for _, tt := range tests {
		if got := tt.set.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestLabelSet_Diff(t *testing.T) {
	previous := NewLabelSet("person", "cat")
	current := NewLabelSet("person", "dog", "car")

	added := current.Added(previous)
	if len(added) != 2 || added[0] != "car" || added[1] != "dog" {
		t.Errorf("Added = %v, want [car dog]", added)
	}

	removed := current.Removed(previous)
	if len(removed) != 1 || removed[0] != "cat" {
		t.Errorf("Removed = %v, want [cat]", removed)
	}
}

func TestLabelSet_Contains(t *testing.T) {
	set := NewLabelSet("a", "b", "a")
	if got := set.Sorted(); len(got) != 2 {
		t.Errorf("Sorted = %v, want 2 distinct labels", got)
	}
	if !set.Contains("a") || set.Contains("c") {
		t.Errorf("Contains mismatch for %v", set)
	}
	if (LabelSet{}).Contains("a") {
		t.Error("zero value should contain nothing")
	}
}
