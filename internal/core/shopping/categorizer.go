package shopping

import (
	"sort"
	"strings"
)

// Categorizer 依詞彙表規則分類並排序購物項目
type Categorizer struct {
	catalog *Catalog
}

// NewCategorizer 創建分類器，catalog 為 nil 時使用內建詞彙表
func NewCategorizer(catalog *Catalog) *Categorizer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Categorizer{catalog: catalog}
}

// Categorize 回傳名稱所屬分類 ID，依規則順序比對完整單字，第一個命中者勝出
func (c *Categorizer) Categorize(name string) string {
	words := strings.Fields(NormalizeName(name))
	for i, w := range words {
		words[i] = c.catalog.Singular(strings.Trim(w, ".,;:()"))
	}

	for _, rule := range c.catalog.rules {
		for _, kw := range rule.keywords {
			if containsPhrase(words, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

// Group 依分類順序分組，組內依顯示名稱（不分大小寫）排序，空分類省略
func (c *Categorizer) Group(items []ShoppingItem) []CategoryGroup {
	categories := c.catalog.Categories()
	buckets := make([][]ShoppingItem, len(categories))
	for _, item := range items {
		rank := c.catalog.categoryRank(item.Category)
		buckets[rank] = append(buckets[rank], item)
	}

	groups := make([]CategoryGroup, 0, len(categories))
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		sort.SliceStable(bucket, func(a, b int) bool {
			return lessItem(bucket[a], bucket[b])
		})
		groups = append(groups, CategoryGroup{Category: categories[i], Items: bucket})
	}
	return groups
}

func lessItem(a, b ShoppingItem) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.Key < b.Key
}

// containsPhrase 檢查 words 中是否有連續的 phrase
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}
