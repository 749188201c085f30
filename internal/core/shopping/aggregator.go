package shopping

// Aggregate 依正規化名稱合併食材，輸出順序為首次出現順序
//
// 相同單位的數量相加；單位不同時不做換算，數量記入 ExtraAmounts，
// TotalQuantity 與 Unit 維持第一次出現的基準。
func Aggregate(items []SourcedIngredient) []AggregatedIngredient {
	index := make(map[string]int, len(items))
	out := make([]AggregatedIngredient, 0, len(items))

	for _, item := range items {
		parsed := item.Parsed
		key := parsed.Name
		if key == "" {
			continue
		}

		i, exists := index[key]
		if !exists {
			index[key] = len(out)
			out = append(out, AggregatedIngredient{
				Key:           key,
				Name:          parsed.DisplayName,
				TotalQuantity: parsed.Quantity,
				Unit:          parsed.Unit,
				UsedInMeals:   appendMeal(nil, item.MealName),
			})
			continue
		}

		agg := &out[i]
		if parsed.Unit == agg.Unit {
			agg.TotalQuantity += parsed.Quantity
		} else {
			agg.ExtraAmounts = addAmount(agg.ExtraAmounts, parsed.Quantity, parsed.Unit)
		}
		agg.UsedInMeals = appendMeal(agg.UsedInMeals, item.MealName)
	}

	return out
}

// appendMeal 保持插入順序並去除重複
func appendMeal(meals []string, meal string) []string {
	if meal == "" {
		if meals == nil {
			return []string{}
		}
		return meals
	}
	for _, m := range meals {
		if m == meal {
			return meals
		}
	}
	return append(meals, meal)
}

func addAmount(amounts []Amount, quantity float64, unit string) []Amount {
	for i := range amounts {
		if amounts[i].Unit == unit {
			amounts[i].Quantity += quantity
			return amounts
		}
	}
	return append(amounts, Amount{Quantity: quantity, Unit: unit})
}
