package model

import (
	"fmt"
	"strings"
)

// Category identifies which rule tier a fragment was loaded from.
type Category string

const (
	// CategoryCore holds the always-applied base rules.
	CategoryCore Category = "core"
	// CategoryWorkflow holds process and workflow rules.
	CategoryWorkflow Category = "workflow"
	// CategoryExtended holds optional rules that are also compiled into skill bundles.
	CategoryExtended Category = "extended"
	// CategoryStandard is the post-migration parent directory for the shipped tiers.
	CategoryStandard Category = "standard"
	// CategoryCustom holds user-authored rules that override shipped ones.
	CategoryCustom Category = "custom"
)

// LegacyCategories returns the shipped rule tiers in load order. The order is
// load precedence: on a duplicate id the earlier category wins.
func LegacyCategories() []Category {
	return []Category{CategoryCore, CategoryWorkflow, CategoryExtended}
}

// ParseCategory parses a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryCore:
		return CategoryCore, nil
	case CategoryWorkflow:
		return CategoryWorkflow, nil
	case CategoryExtended:
		return CategoryExtended, nil
	case CategoryStandard:
		return CategoryStandard, nil
	case CategoryCustom:
		return CategoryCustom, nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// String returns the directory name for the category.
func (c Category) String() string {
	return string(c)
}
