package shopping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	var ids []string
	for _, cat := range c.Categories() {
		ids = append(ids, cat.ID)
	}
	want := "produce,dairy,meat,bakery,frozen,pantry,other"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("Expected category order %s, got %s", want, got)
	}

	cat, ok := c.Category("dairy")
	if !ok || cat.Label != "Dairy & Eggs" || cat.Emoji == "" {
		t.Errorf("Expected dairy category with label and emoji, got %+v", cat)
	}

	if u, ok := c.Unit("Tablespoons"); !ok || u != "tbsp" {
		t.Errorf("Expected Tablespoons to map to tbsp, got %q", u)
	}
	if u, ok := c.Unit("fluid  ounces"); !ok || u != "fl oz" {
		t.Errorf("Expected fluid ounces to map to fl oz, got %q", u)
	}
	if _, ok := c.Unit("onion"); ok {
		t.Error("Expected onion not to be a unit")
	}
	if c.Pluralizes("tbsp") || !c.Pluralizes("cup") || c.Pluralizes("") || c.Pluralizes(UnitToTaste) {
		t.Error("Unexpected pluralization rules")
	}
}

func TestCatalogCategoriesIsCopy(t *testing.T) {
	c := DefaultCatalog()
	cats := c.Categories()
	cats[0].ID = "changed"
	if c.Categories()[0].ID != "produce" {
		t.Error("Expected Categories to return a copy")
	}
}

func TestCatalogSingular(t *testing.T) {
	c := DefaultCatalog()
	tests := map[string]string{
		"tomatoes":  "tomato",
		"berries":   "berry",
		"peaches":   "peach",
		"radishes":  "radish",
		"leaves":    "leaf",
		"olives":    "olive",
		"eggs":      "egg",
		"peas":      "pea",
		"glasses":   "glass",
		"asparagus": "asparagus",
		"hummus":    "hummus",
		"molasses":  "molasses",
		"bass":      "bass",
		"pies":      "pie",
		"flour":     "flour",
		"Carrots":   "carrot",
		"zucchinis": "zucchini",
		"kiwis":     "kiwi",
		"chilis":    "chili",
		"chilies":   "chili",
		"cookies":   "cookie",
		"brownies":  "brownie",
		"cloves":    "clove",
		"cheeses":   "cheese",
		"avocados":  "avocado",
		"pasta":     "pasta",
		"feta":      "feta",
	}
	for in, want := range tests {
		if got := c.Singular(in); got != want {
			t.Errorf("Singular(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCatalogKey(t *testing.T) {
	c := DefaultCatalog()
	tests := map[string]string{
		"  Green   Onions ": "green onion",
		"EGGS":             "egg",
		"salt.":            "salt",
		"":                 "",
	}
	for in, want := range tests {
		if got := c.Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "units: [",
			wantErr: "failed to parse catalog",
		},
		{
			name:    "missing other",
			yaml:    "categories:\n  - {id: produce, label: Produce}\n",
			wantErr: `must define the "other" category`,
		},
		{
			name:    "unknown rule category",
			yaml:    "categories:\n  - {id: other, label: Other}\nrules:\n  - {category: dairy, keywords: [milk]}\n",
			wantErr: `unknown category "dairy"`,
		},
		{
			name:    "conflicting alias",
			yaml:    "units:\n  cup: [c]\n  clove: [c]\ncategories:\n  - {id: other, label: Other}\n",
			wantErr: `unit alias "c"`,
		},
		{
			name:    "duplicate category",
			yaml:    "categories:\n  - {id: other, label: Other}\n  - {id: other, label: Again}\n",
			wantErr: `duplicate category "other"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
units:
  cup: [cups]
categories:
  - {id: drinks, label: Drinks, emoji: "🥤"}
  - {id: other, label: Other, emoji: "🛒"}
rules:
  - category: drinks
    keywords: [juice, sparkling water]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cz := NewCategorizer(c)
	if got := cz.Categorize("orange juice"); got != "drinks" {
		t.Errorf("Expected drinks, got %q", got)
	}
	if got := cz.Categorize("sparkling water"); got != "drinks" {
		t.Errorf("Expected drinks, got %q", got)
	}
	if got := cz.Categorize("water"); got != CategoryOther {
		t.Errorf("Expected other, got %q", got)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing catalog file")
	}
	if c, err := LoadCatalog(""); err != nil || c != DefaultCatalog() {
		t.Errorf("Expected the default catalog for an empty path, got %v", err)
	}
}
