package domain

import "sort"

// CategoryTotal is the aggregated amount for one category
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// Summary aggregates a user's transactions
type Summary struct {
	Count      int             `json:"count"`
	Income     float64         `json:"income"`  // Sum of positive amounts
	Expense    float64         `json:"expense"` // Sum of absolute negative amounts
	Balance    float64         `json:"balance"` // Income minus expense
	ByCategory []CategoryTotal `json:"by_category"`
}

// Summarize folds transactions into a Summary, categories sorted by name
func Summarize(txs []Transaction) Summary {
	s := Summary{ByCategory: []CategoryTotal{}}
	index := make(map[string]int) // category -> position in ByCategory
	for _, t := range txs {
		s.Count++
		if t.Amount >= 0 {
			s.Income += t.Amount
		} else {
			s.Expense -= t.Amount
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(s.ByCategory)
			index[t.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: t.Category})
		}
		s.ByCategory[i].Amount += t.Amount
		s.ByCategory[i].Count++
	}
	s.Balance = s.Income - s.Expense
	sort.Slice(s.ByCategory, func(a, b int) bool {
		return s.ByCategory[a].Category < s.ByCategory[b].Category
	})
	return s
}
