package trigger

import "newswatch/internal/model"

// Filter returns the items that satisfy every rule, in input order.
func Filter(items []model.Item, rules RuleSet) []model.Item {
	matched := make([]model.Item, 0, len(items))
	for _, item := range items {
		if rules.Match(item) {
			matched = append(matched, item)
		}
	}
	return matched
}
