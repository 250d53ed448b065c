package outfits

import "sort"

// Groups holds the wardrobe bucketed by category, each bucket ordered from
// the most to the least desirable item.
type Groups map[Category][]ClothingItem

// Desirability is the per-item ranking score used to order buckets.
func Desirability(item ClothingItem) int {
	score := 50
	if item.Versatility != nil {
		score += 5 * *item.Versatility
	}

	switch item.Condition {
	case ConditionExcellent:
		score += 15
	case ConditionGood:
		score += 10
	case ConditionFair:
		score += 5
	}

	switch item.Compliments {
	case ComplimentsAlways:
		score += 20
	case ComplimentsOften:
		score += 15
	case ComplimentsSometimes:
		score += 10
	}
	return score
}

// Classify partitions items by category. Items whose category is not
// recognized are left out. Ties keep their input order.
func Classify(items []ClothingItem) Groups {
	groups := Groups{}
	for _, item := range items {
		if !item.Category.Valid() {
			continue
		}
		groups[item.Category] = append(groups[item.Category], item)
	}

	for category, bucket := range groups {
		scores := make([]int, len(bucket))
		for i, item := range bucket {
			scores[i] = Desirability(item)
		}
		sort.Stable(byDesirability{items: bucket, scores: scores})
		groups[category] = bucket
	}
	return groups
}

type byDesirability struct {
	items  []ClothingItem
	scores []int
}

func (b byDesirability) Len() int           { return len(b.items) }
func (b byDesirability) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b byDesirability) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}

func firstN(items []ClothingItem, n int) []ClothingItem {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
