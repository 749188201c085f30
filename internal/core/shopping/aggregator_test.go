package shopping

import (
	"reflect"
	"testing"
)

func sourced(p *Parser, meal string, lines ...string) []SourcedIngredient {
	out := make([]SourcedIngredient, 0, len(lines))
	for _, line := range lines {
		out = append(out, SourcedIngredient{Parsed: p.Parse(line), MealName: meal})
	}
	return out
}

func TestAggregateSumsSameUnit(t *testing.T) {
	p := NewParser(nil)
	var items []SourcedIngredient
	items = append(items, sourced(p, "Pancakes", "2 cups flour")...)
	items = append(items, sourced(p, "Bread", "1 cup Flour")...)
	items = append(items, sourced(p, "Omelette", "3 eggs")...)

	got := Aggregate(items)
	if len(got) != 2 {
		t.Fatalf("Expected 2 aggregates, got %d", len(got))
	}

	flour := got[0]
	if flour.Key != "flour" || flour.TotalQuantity != 3 || flour.Unit != "cup" {
		t.Errorf("Expected flour 3 cup, got %+v", flour)
	}
	if !reflect.DeepEqual(flour.UsedInMeals, []string{"Pancakes", "Bread"}) {
		t.Errorf("Expected flour used in both meals, got %v", flour.UsedInMeals)
	}
	if flour.Name != "flour" {
		t.Errorf("Expected the first-seen display name, got %q", flour.Name)
	}

	egg := got[1]
	if egg.Key != "egg" || egg.TotalQuantity != 3 || egg.Unit != "" {
		t.Errorf("Expected egg 3 unitless, got %+v", egg)
	}
}

func TestAggregateDeduplicatesMeals(t *testing.T) {
	p := NewParser(nil)
	items := sourced(p, "Stew", "1 onion", "2 onions")
	items = append(items, sourced(p, "Salad", "1 onion")...)
	items = append(items, sourced(p, "Stew", "1 onion")...)

	got := Aggregate(items)
	if len(got) != 1 {
		t.Fatalf("Expected 1 aggregate, got %d", len(got))
	}
	if got[0].TotalQuantity != 5 {
		t.Errorf("Expected total 5, got %v", got[0].TotalQuantity)
	}
	if !reflect.DeepEqual(got[0].UsedInMeals, []string{"Stew", "Salad"}) {
		t.Errorf("Expected [Stew Salad], got %v", got[0].UsedInMeals)
	}
}

func TestAggregateIncompatibleUnits(t *testing.T) {
	p := NewParser(nil)
	var items []SourcedIngredient
	items = append(items, sourced(p, "A", "2 cups flour")...)
	items = append(items, sourced(p, "B", "200 g flour")...)
	items = append(items, sourced(p, "C", "1 cup flour", "100 g flour", "1 pinch flour")...)

	got := Aggregate(items)
	if len(got) != 1 {
		t.Fatalf("Expected 1 aggregate, got %d", len(got))
	}
	flour := got[0]
	if flour.TotalQuantity != 3 || flour.Unit != "cup" {
		t.Errorf("Expected the first-seen basis 3 cup, got %v %q", flour.TotalQuantity, flour.Unit)
	}
	want := []Amount{{Quantity: 300, Unit: "g"}, {Quantity: 1, Unit: "pinch"}}
	if !reflect.DeepEqual(flour.ExtraAmounts, want) {
		t.Errorf("Expected extra amounts %v, got %v", want, flour.ExtraAmounts)
	}
	if !reflect.DeepEqual(flour.UsedInMeals, []string{"A", "B", "C"}) {
		t.Errorf("Expected [A B C], got %v", flour.UsedInMeals)
	}
}

func TestAggregateKeepsFirstSeenOrder(t *testing.T) {
	p := NewParser(nil)
	items := sourced(p, "M", "1 zucchini", "1 apple", "1 milk", "1 apple")

	got := Aggregate(items)
	var keys []string
	for _, agg := range got {
		keys = append(keys, agg.Key)
	}
	if !reflect.DeepEqual(keys, []string{"zucchini", "apple", "milk"}) {
		t.Errorf("Expected first-seen order, got %v", keys)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("Expected no aggregates, got %v", got)
	}
}
