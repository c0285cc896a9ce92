// calorie.go
//
// Dual-store data sync service for TeaCal (轻茶纪), a milk-tea calorie tracker
// Copyright (c) 2026 TeaCal Project Contributors
//
// This file is part of teacal-sync.
// teacal-sync is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// teacal-sync is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with teacal-sync.
// If not, see <https://www.gnu.org/licenses/>.

// Package calorie estimates kilocalories for a logged drink from static
// lookup tables. Every input is best effort: unknown ingredients, sizes
// and malformed values resolve to a fixed fallback, never an error.
package calorie

import (
	"encoding/json"
	"log"
	"math"

	"github.com/qingchaji/teacal-sync/data"
)

// Ingredient is one row of the embedded topping reference table.
type Ingredient struct {
	Name           string  `json:"name"`
	CaloriePerGram float64 `json:"calorie_per_gram"`
	DefaultAmount  float64 `json:"default_amount"`
	Category       string  `json:"category"`
}

// Base kcal of the drink itself per cup size, before the sugar factor.
var baseCalories = map[string]int{
	"small":  80,
	"medium": 120,
	"large":  160,
}

// Sugar grams per cup size at 100% sweetness.
var baseSugarGrams = map[string]int{
	"small":  20,
	"medium": 30,
	"large":  40,
}

// fallbackBase is used when the cup size is unknown or the client never
// picked a drink.
const fallbackBase = 200

var (
	ingredients     []Ingredient
	ingredientIndex map[string]Ingredient
)

func init() {
	if err := json.Unmarshal(data.IngredientsJSON, &ingredients); err != nil {
		// The table is embedded at build time; failing to parse it is a
		// packaging bug, not a runtime condition.
		log.Fatalf("Failed to parse embedded ingredient table: %v", err)
	}
	ingredientIndex = make(map[string]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ingredientIndex[ing.Name] = ing
	}
}

// Ingredients returns the embedded topping reference table.
func Ingredients() []Ingredient {
	return ingredients
}

// ForIngredient returns the kcal contribution of grams of a named topping.
// Unknown names and non-positive amounts contribute 0.
func ForIngredient(name string, grams float64) int {
	if grams <= 0 {
		return 0
	}
	ing, ok := ingredientIndex[name]
	if !ok {
		return 0
	}
	return int(math.Round(ing.CaloriePerGram * grams))
}

// ForTopping returns the kcal contribution of a topping at its default
// serving amount (50 g for most toppings).
func ForTopping(name string) int {
	ing, ok := ingredientIndex[name]
	if !ok {
		return 0
	}
	return ForIngredient(name, ing.DefaultAmount)
}

// ForBase returns the kcal of the beverage's own base and sugar portion.
// The sugar factor scales only this portion, never toppings.
func ForBase(size string, sugarPercent int) int {
	base, ok := baseCalories[size]
	if !ok {
		base = fallbackBase
	}
	return int(math.Round(float64(base) * sugarFactor(sugarPercent)))
}

// SugarGrams estimates grams of sugar for a cup size at a sweetness level.
func SugarGrams(size string, sugarPercent int) int {
	base, ok := baseSugarGrams[size]
	if !ok {
		base = baseSugarGrams["medium"]
	}
	p := clampPercent(sugarPercent)
	return int(math.Round(float64(p) / 100 * float64(base)))
}

// EstimateRecord computes the calorie estimate for a record that arrived
// without a user override: base portion plus each topping at its default
// serving amount.
func EstimateRecord(size string, sugarPercent int, toppings []string) int {
	total := ForBase(size, sugarPercent)
	for _, name := range toppings {
		total += ForTopping(name)
	}
	return total
}

func sugarFactor(sugarPercent int) float64 {
	p := clampPercent(sugarPercent)
	return 0.7 + 0.3*float64(p)/100
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
