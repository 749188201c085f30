package shopping

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	f := NewFormatter(nil)
	tests := []struct {
		quantity float64
		unit     string
		want     string
	}{
		{2, "cup", "2 cups"},
		{1, "cup", "1 cup"},
		{3, "", "3"},
		{1.5, "cup", "1 1/2 cups"},
		{0.5, "tbsp", "1/2 tbsp"},
		{8, "oz", "8 oz"},
		{3, "clove", "3 cloves"},
		{2, "pinch", "2 pinches"},
		{2, "bunch", "2 bunches"},
		{2, "package", "2 packages"},
		{0.333, "cup", "1/3 cup"},
		{0.125, "tsp", "1/8 tsp"},
		{0.75, "", "3/4"},
		{2.456, "g", "2.46 g"},
		{1.99, "", "2"},
		{0.01, "", "0.01"},
		{4, UnitToTaste, "to taste"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := f.Format(tt.quantity, tt.unit); got != tt.want {
				t.Errorf("Format(%v, %q) = %q, want %q", tt.quantity, tt.unit, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	f := NewFormatter(nil)
	p := NewParser(nil)

	quantities := []float64{0.25, 0.5, 1, 1.5, 2, 2.75, 0.333, 3.125, 2.46, 10}
	units := []string{"cup", "tbsp", "clove", "", "g", "pinch", "fl oz"}

	for _, q := range quantities {
		for _, u := range units {
			line := f.Format(q, u) + " flour"
			got := p.Parse(line)
			if math.Abs(got.Quantity-q) > fractionTolerance {
				t.Errorf("Parse(%q) quantity = %v, want ~%v", line, got.Quantity, q)
			}
			if got.Unit != u {
				t.Errorf("Parse(%q) unit = %q, want %q", line, got.Unit, u)
			}
			if got.Name != "flour" {
				t.Errorf("Parse(%q) name = %q, want flour", line, got.Name)
			}
		}
	}
}
