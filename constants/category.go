package constants

import (
	"strings"
)

// Category is the canonical food category stored on a restaurant.
type Category string

const (
	Korean   Category = "한식"
	Chinese  Category = "중식"
	Japanese Category = "일식"
	Western  Category = "양식"
	Asian    Category = "아시안"
	Cafe     Category = "카페"
	Dessert  Category = "디저트"
	Bakery   Category = "베이커리"
	Chicken  Category = "치킨"
	Pizza    Category = "피자"
	FastFood Category = "패스트푸드"
	Snack    Category = "분식"
	Pub      Category = "주점"
	Meat     Category = "고기"
	Seafood  Category = "해산물"
	Buffet   Category = "뷔페"
	Other    Category = "기타"
)

// MaxCategoryRunes caps free-form categories that do not map to a canonical one.
const MaxCategoryRunes = 10

var allCategories = []Category{
	Korean,
	Chinese,
	Japanese,
	Western,
	Asian,
	Cafe,
	Dessert,
	Bakery,
	Chicken,
	Pizza,
	FastFood,
	Snack,
	Pub,
	Meat,
	Seafood,
	Buffet,
	Other,
}

// AsStringSlice lists the canonical category names in declaration order.
func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize reports whether input is already one of the canonical category names.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
