package shopping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

// CategoryOther 未命中任何規則時的分類
const CategoryOther = "other"

// UnitToTaste "to taste" 類型食材使用的單位
const UnitToTaste = "to taste"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// catalogFile catalog.yaml 的檔案格式
type catalogFile struct {
	Units          map[string][]string `yaml:"units"`
	NonPluralUnits []string            `yaml:"non_plural_units"`
	Descriptors    []string            `yaml:"descriptors"`
	Singular       struct {
		Invariant []string          `yaml:"invariant"`
		Irregular map[string]string `yaml:"irregular"`
	} `yaml:"singular"`
	Categories []Category `yaml:"categories"`
	Rules      []struct {
		Category string   `yaml:"category"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"rules"`
}

// categoryRule 分類規則，keywords 為已切分的詞組
type categoryRule struct {
	category string
	keywords [][]string
}

// Catalog 不可變的食材詞彙表
type Catalog struct {
	units         map[string]string
	maxUnitWords  int
	nonPlural     map[string]bool
	descriptors   map[string]bool
	invariant     map[string]bool
	irregular     map[string]string
	categories    []Category
	categoryIndex map[string]int
	rules         []categoryRule
}

// DefaultCatalog 內建詞彙表
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("invalid embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog 從檔案載入詞彙表，path 為空時使用內建詞彙表
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析並驗證 YAML 詞彙表
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		units:         make(map[string]string),
		maxUnitWords:  1,
		nonPlural:     toSet(file.NonPluralUnits),
		descriptors:   toSet(file.Descriptors),
		invariant:     toSet(file.Singular.Invariant),
		irregular:     make(map[string]string, len(file.Singular.Irregular)),
		categoryIndex: make(map[string]int, len(file.Categories)),
	}

	for canonical, aliases := range file.Units {
		canonical = normalizeSpaces(strings.ToLower(canonical))
		if canonical == "" {
			return nil, fmt.Errorf("catalog unit with empty name")
		}
		for _, alias := range append([]string{canonical}, aliases...) {
			alias = normalizeSpaces(strings.ToLower(alias))
			if alias == "" {
				continue
			}
			if prev, ok := c.units[alias]; ok && prev != canonical {
				return nil, fmt.Errorf("unit alias %q maps to both %q and %q", alias, prev, canonical)
			}
			c.units[alias] = canonical
			if n := len(strings.Fields(alias)); n > c.maxUnitWords {
				c.maxUnitWords = n
			}
		}
	}

	for plural, singular := range file.Singular.Irregular {
		c.irregular[strings.ToLower(plural)] = strings.ToLower(singular)
	}

	for _, cat := range file.Categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("catalog category with empty id")
		}
		if _, dup := c.categoryIndex[cat.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.ID)
		}
		c.categoryIndex[cat.ID] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	if _, ok := c.categoryIndex[CategoryOther]; !ok {
		return nil, fmt.Errorf("catalog must define the %q category", CategoryOther)
	}

	for i, r := range file.Rules {
		if _, ok := c.categoryIndex[r.Category]; !ok {
			return nil, fmt.Errorf("rule %d references unknown category %q", i, r.Category)
		}
		rule := categoryRule{category: r.Category}
		for _, kw := range r.Keywords {
			words := strings.Fields(strings.ToLower(kw))
			if len(words) > 0 {
				rule.keywords = append(rule.keywords, words)
			}
		}
		c.rules = append(c.rules, rule)
	}

	return c, nil
}

// Unit 將單位別名轉為標準單位
func (c *Catalog) Unit(token string) (string, bool) {
	u, ok := c.units[normalizeSpaces(strings.ToLower(strings.TrimSuffix(token, ".")))]
	return u, ok
}

// IsDescriptor 是否為描述詞
func (c *Catalog) IsDescriptor(word string) bool {
	return c.descriptors[strings.ToLower(word)]
}

// Pluralizes 單位在數量大於 1 時是否加複數
func (c *Catalog) Pluralizes(unit string) bool {
	if unit == "" || unit == UnitToTaste {
		return false
	}
	return !c.nonPlural[unit]
}

// Categories 依顯示順序回傳分類
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category 依 ID 取得分類
func (c *Catalog) Category(id string) (Category, bool) {
	i, ok := c.categoryIndex[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// categoryRank 分類的顯示順序
func (c *Catalog) categoryRank(id string) int {
	if i, ok := c.categoryIndex[id]; ok {
		return i
	}
	return c.categoryIndex[CategoryOther]
}

// Singular 將單字轉為單數：詞彙表的例外優先，其餘以 s 結尾的字交給 inflection
//
// 不以 s 結尾的字視為單數，避免 pasta、feta 被 inflection 的拉丁字尾規則改寫。
func (c *Catalog) Singular(word string) string {
	w := strings.ToLower(word)
	if c.invariant[w] {
		return w
	}
	if s, ok := c.irregular[w]; ok {
		return s
	}
	if len(w) <= 3 || !strings.HasSuffix(w, "s") || strings.HasSuffix(w, "us") {
		return w
	}
	return inflection.Singular(w)
}

// Key 將食材名稱轉為分組鍵：小寫、合併空白、最後一個字轉單數
func (c *Catalog) Key(name string) string {
	words := strings.Fields(NormalizeName(name))
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = c.Singular(words[len(words)-1])
	return strings.Join(words, " ")
}

// NormalizeName 小寫、去除前後空白與標點並合併內部空白
func NormalizeName(name string) string {
	s := normalizeSpaces(strings.ToLower(name))
	return strings.Trim(s, " .,;:!")
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[normalizeSpaces(strings.ToLower(item))] = true
	}
	return set
}
