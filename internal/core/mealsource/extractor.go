package mealsource

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoIngredients 頁面中找不到食材清單
var ErrNoIngredients = errors.New("no ingredient list found")

// 依序嘗試的食材清單選擇器
var ingredientSelectors = []string{
	"[itemprop=recipeIngredient]",
	"[itemprop=ingredients]",
	".ingredients li",
	"li.ingredient",
	".recipe-ingredients li",
}

// ExtractRecipe 從食譜 HTML 取出標題與食材行
func ExtractRecipe(r io.Reader) (*shopping.Meal, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe html: %w", err)
	}

	title, lines := fromJSONLD(doc)
	if len(lines) == 0 {
		lines = fromSelectors(doc)
	}
	if len(lines) == 0 {
		lines = fromIngredientsHeading(doc)
	}
	if len(lines) == 0 {
		return nil, ErrNoIngredients
	}

	if title == "" {
		title = pageTitle(doc)
	}
	return &shopping.Meal{Name: title, Ingredients: lines}, nil
}

// ExtractIngredients 只取出食材行
func ExtractIngredients(r io.Reader) ([]string, error) {
	meal, err := ExtractRecipe(r)
	if err != nil {
		return nil, err
	}
	return meal.Ingredients, nil
}

// fromJSONLD 讀取 schema.org Recipe 結構化資料
func fromJSONLD(doc *goquery.Document) (string, []string) {
	var title string
	var lines []string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := common.DecodeJSON(strings.NewReader(s.Text()), &data); err != nil {
			return true
		}
		if recipe := findRecipe(data); recipe != nil {
			title = cleanText(stringValue(recipe["name"]))
			for _, item := range listValue(recipe["recipeIngredient"]) {
				if line := cleanText(stringValue(item)); line != "" {
					lines = append(lines, line)
				}
			}
		}
		return len(lines) == 0
	})
	return title, lines
}

// findRecipe 在 JSON-LD 中尋找 @type 為 Recipe 的物件
func findRecipe(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if r := findRecipe(item); r != nil {
				return r
			}
		}
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipe(graph)
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func listValue(v interface{}) []interface{} {
	switch l := v.(type) {
	case []interface{}:
		return l
	case string:
		return []interface{}{l}
	}
	return nil
}

// fromSelectors 依序嘗試常見的食材清單標記
func fromSelectors(doc *goquery.Document) []string {
	for _, selector := range ingredientSelectors {
		if lines := collectText(doc.Find(selector)); len(lines) > 0 {
			return lines
		}
	}
	return nil
}

// fromIngredientsHeading 找到標題含 "Ingredients" 的段落後第一個清單
func fromIngredientsHeading(doc *goquery.Document) []string {
	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), "ingredient") {
			return true
		}
		list := h.NextAllFiltered("ul, ol").First()
		lines = collectText(list.Find("li"))
		return len(lines) == 0
	})
	return lines
}

func collectText(sel *goquery.Selection) []string {
	var lines []string
	sel.Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if content, ok := s.Attr("content"); ok && strings.TrimSpace(text) == "" {
			text = content
		}
		if line := cleanText(text); line != "" {
			lines = append(lines, line)
		}
	})
	return lines
}

// pageTitle 依序使用 og:title、h1、<title>
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && cleanText(og) != "" {
		return cleanText(og)
	}
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return cleanText(doc.Find("title").First().Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
