package shopping

// Meal 餐點，Ingredients 為 LLM 產生的自由文字食材行，可能為 nil
type Meal struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Day         string   `json:"day,omitempty"`
	MealType    string   `json:"meal_type,omitempty"`
	Ingredients []string `json:"ingredients"`
}

// Label 顯示用的餐點名稱，沒有名稱時使用 ID
func (m Meal) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// ParsedIngredient 解析後的食材行
type ParsedIngredient struct {
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Descriptor  string  `json:"descriptor,omitempty"`
	RawText     string  `json:"raw_text"`
}

// SourcedIngredient 帶有來源餐點的解析結果
type SourcedIngredient struct {
	Parsed   ParsedIngredient
	MealName string
}

// Amount 數量與單位
type Amount struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// AggregatedIngredient 跨餐點合併後的食材
type AggregatedIngredient struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	TotalQuantity float64  `json:"total_quantity"`
	Unit          string   `json:"unit"`
	ExtraAmounts  []Amount `json:"extra_amounts,omitempty"`
	UsedInMeals   []string `json:"used_in_meals"`
}

// Category 購物分類
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Emoji string `json:"emoji" yaml:"emoji"`
}

// ShoppingItem 購物清單項目
type ShoppingItem struct {
	AggregatedIngredient
	Category     string   `json:"category"`
	QuantityText string   `json:"quantity_text"`
	ExtraText    []string `json:"extra_text,omitempty"`
	Checked      bool     `json:"checked"`
}

// CategoryGroup 同一分類的項目
type CategoryGroup struct {
	Category Category       `json:"category"`
	Items    []ShoppingItem `json:"items"`
}

// List 分類排序後的購物清單
type List struct {
	Groups       []CategoryGroup `json:"groups"`
	ItemCount    int             `json:"item_count"`
	CheckedCount int             `json:"checked_count"`
}
