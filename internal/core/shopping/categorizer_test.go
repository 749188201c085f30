package shopping

import (
	"testing"
)

func TestCategorize(t *testing.T) {
	c := NewCategorizer(nil)
	tests := []struct {
		name string
		want string
	}{
		{"tomato", "produce"},
		{"cherry tomatoes", "produce"},
		{"bell pepper", "produce"},
		{"eggplant", "produce"},
		{"milk", "dairy"},
		{"egg", "dairy"},
		{"cheddar cheese", "dairy"},
		{"chicken breast", "meat"},
		{"ground beef", "meat"},
		{"bread", "bakery"},
		{"flour tortillas", "bakery"},
		{"frozen pea", "frozen"},
		{"peanut butter", "pantry"},
		{"chicken broth", "pantry"},
		{"coconut milk", "pantry"},
		{"olive oil", "pantry"},
		{"black pepper", "pantry"},
		{"salt and pepper", "pantry"},
		{"flour", "pantry"},
		{"water", "other"},
		{"xyz", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Categorize(tt.name); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	c := NewCategorizer(nil)
	known := map[string]bool{}
	for _, cat := range DefaultCatalog().Categories() {
		known[cat.ID] = true
	}

	names := []string{"", "   ", "!!!", "mystery meat product", "12", "é", "tomato paste", "ice cream sandwich"}
	for _, name := range names {
		if got := c.Categorize(name); !known[got] {
			t.Errorf("Categorize(%q) returned unknown category %q", name, got)
		}
	}
}

func TestGroup(t *testing.T) {
	c := NewCategorizer(nil)
	items := []ShoppingItem{
		{AggregatedIngredient: AggregatedIngredient{Key: "salt", Name: "salt"}, Category: "pantry"},
		{AggregatedIngredient: AggregatedIngredient{Key: "banana", Name: "banana"}, Category: "produce"},
		{AggregatedIngredient: AggregatedIngredient{Key: "water", Name: "water"}, Category: "other"},
		{AggregatedIngredient: AggregatedIngredient{Key: "apple", Name: "Apple"}, Category: "produce"},
		{AggregatedIngredient: AggregatedIngredient{Key: "milk", Name: "milk"}, Category: "dairy"},
		{AggregatedIngredient: AggregatedIngredient{Key: "carrot", Name: "carrot"}, Category: "produce"},
		{AggregatedIngredient: AggregatedIngredient{Key: "thing", Name: "thing"}, Category: "unknown"},
	}

	groups := c.Group(items)

	wantOrder := []string{"produce", "dairy", "pantry", "other"}
	if len(groups) != len(wantOrder) {
		t.Fatalf("Expected %d groups, got %d", len(wantOrder), len(groups))
	}
	for i, id := range wantOrder {
		if groups[i].Category.ID != id {
			t.Errorf("Expected group %d to be %q, got %q", i, id, groups[i].Category.ID)
		}
	}

	produce := groups[0].Items
	if produce[0].Name != "Apple" || produce[1].Name != "banana" || produce[2].Name != "carrot" {
		t.Errorf("Expected produce sorted case-insensitively, got %s, %s, %s", produce[0].Name, produce[1].Name, produce[2].Name)
	}

	other := groups[3].Items
	if len(other) != 2 || other[0].Name != "thing" || other[1].Name != "water" {
		t.Errorf("Expected unknown categories to fall into other, got %+v", other)
	}
}

func TestGroupEmpty(t *testing.T) {
	groups := NewCategorizer(nil).Group(nil)
	if groups == nil || len(groups) != 0 {
		t.Errorf("Expected an empty, non-nil group list, got %#v", groups)
	}
}

func TestContainsPhrase(t *testing.T) {
	words := []string{"red", "bell", "pepper"}
	if !containsPhrase(words, []string{"bell", "pepper"}) {
		t.Error("Expected contiguous phrase to match")
	}
	if containsPhrase(words, []string{"red", "pepper"}) {
		t.Error("Expected non-contiguous phrase not to match")
	}
	if containsPhrase(words, []string{"red", "bell", "pepper", "flake"}) {
		t.Error("Expected longer phrase not to match")
	}
}
