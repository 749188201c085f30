package shopping

import (
	"math"
	"strconv"
	"strings"
)

// 分數顯示使用的分母，依序嘗試
var fractionDenominators = []int{2, 3, 4, 8}

const fractionTolerance = 0.02

// Formatter 將數量與單位轉為顯示文字
type Formatter struct {
	catalog *Catalog
}

// NewFormatter 創建格式化器，catalog 為 nil 時使用內建詞彙表
func NewFormatter(catalog *Catalog) *Formatter {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Formatter{catalog: catalog}
}

// Format 例如 (2, "cup") → "2 cups"、(3, "") → "3"、(0.5, "tbsp") → "1/2 tbsp"
func (f *Formatter) Format(quantity float64, unit string) string {
	if unit == UnitToTaste {
		return UnitToTaste
	}
	text := FormatQuantity(quantity)
	if unit == "" {
		return text
	}
	if quantity > 1 && f.catalog.Pluralizes(unit) {
		unit = pluralize(unit)
	}
	return text + " " + unit
}

// FormatQuantity 整數不帶小數，接近 1/2、1/3、1/4、1/8 倍數時以帶分數表示，其餘四捨五入到兩位小數
func FormatQuantity(q float64) string {
	if math.Abs(q-math.Round(q)) < 1e-9 {
		return strconv.FormatFloat(math.Round(q), 'f', -1, 64)
	}

	whole := math.Floor(q)
	frac := q - whole
	for _, den := range fractionDenominators {
		num := int(math.Round(frac * float64(den)))
		if math.Abs(frac-float64(num)/float64(den)) > fractionTolerance {
			continue
		}
		w := int(whole)
		switch {
		case num == 0 && w == 0:
			continue
		case num == 0:
			return strconv.Itoa(w)
		case num == den:
			return strconv.Itoa(w + 1)
		}
		g := gcd(num, den)
		fraction := strconv.Itoa(num/g) + "/" + strconv.Itoa(den/g)
		if w == 0 {
			return fraction
		}
		return strconv.Itoa(w) + " " + fraction
	}

	s := strconv.FormatFloat(q, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func pluralize(unit string) string {
	switch {
	case strings.HasSuffix(unit, "ch"),
		strings.HasSuffix(unit, "sh"),
		strings.HasSuffix(unit, "s"),
		strings.HasSuffix(unit, "x"):
		return unit + "es"
	}
	return unit + "s"
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
