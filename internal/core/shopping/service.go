package shopping

import (
	"strings"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 組合解析、合併、分類與格式化的購物清單服務
type Service struct {
	catalog     *Catalog
	parser      *Parser
	categorizer *Categorizer
	formatter   *Formatter
}

// NewService 創建購物清單服務，catalog 為 nil 時使用內建詞彙表
func NewService(catalog *Catalog) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Service{
		catalog:     catalog,
		parser:      NewParser(catalog),
		categorizer: NewCategorizer(catalog),
		formatter:   NewFormatter(catalog),
	}
}

// Catalog 目前使用的詞彙表
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// ParseLine 解析單行食材
func (s *Service) ParseLine(line string) ParsedIngredient {
	return s.parser.Parse(line)
}

// ParseLines 解析多行食材，空白行略過
func (s *Service) ParseLines(lines []string) []ParsedIngredient {
	out := make([]ParsedIngredient, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, s.parser.Parse(line))
	}
	return out
}

// ItemKey 將用戶端傳來的項目名稱轉為與清單相同的分組鍵
func (s *Service) ItemKey(name string) string {
	return s.catalog.Key(name)
}

// BuildList 由餐點產生分類排序後的購物清單，checked 為勾選狀態，可為 nil
func (s *Service) BuildList(meals []Meal, checked map[string]bool) *List {
	var sourced []SourcedIngredient
	for _, meal := range meals {
		label := meal.Label()
		for _, line := range meal.Ingredients {
			if strings.TrimSpace(line) == "" {
				continue
			}
			sourced = append(sourced, SourcedIngredient{
				Parsed:   s.parser.Parse(line),
				MealName: label,
			})
		}
	}

	aggregated := Aggregate(sourced)
	items := make([]ShoppingItem, 0, len(aggregated))
	checkedCount := 0
	for _, agg := range aggregated {
		item := ShoppingItem{
			AggregatedIngredient: agg,
			Category:             s.categorizer.Categorize(agg.Name),
			QuantityText:         s.formatter.Format(agg.TotalQuantity, agg.Unit),
			Checked:              checked[agg.Key],
		}
		for _, extra := range agg.ExtraAmounts {
			item.ExtraText = append(item.ExtraText, s.formatter.Format(extra.Quantity, extra.Unit))
		}
		if item.Checked {
			checkedCount++
		}
		items = append(items, item)
	}

	list := &List{
		Groups:       s.categorizer.Group(items),
		ItemCount:    len(items),
		CheckedCount: checkedCount,
	}

	common.LogDebug("購物清單已產生",
		zap.Int("meals", len(meals)),
		zap.Int("lines", len(sourced)),
		zap.Int("items", list.ItemCount),
		zap.Int("groups", len(list.Groups)),
	)
	return list
}
