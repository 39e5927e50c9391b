package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Balance)
	assert.NotNil(t, s.ByCategory)
	assert.Empty(t, s.ByCategory)
}

func TestSummarizeTotals(t *testing.T) {
	s := Summarize([]Transaction{
		{Amount: 5000000, Category: "salary"},
		{Amount: -10000, Category: "food"},
		{Amount: -2500, Category: "food"},
		{Amount: -300000, Category: "bills"},
		{Amount: 0, Category: "adjustment"},
	})
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 5000000.0, s.Income)
	assert.Equal(t, 312500.0, s.Expense)
	assert.Equal(t, 4687500.0, s.Balance)
	assert.Equal(t, []CategoryTotal{
		{Category: "adjustment", Amount: 0, Count: 1},
		{Category: "bills", Amount: -300000, Count: 1},
		{Category: "food", Amount: -12500, Count: 2},
		{Category: "salary", Amount: 5000000, Count: 1},
	}, s.ByCategory)
}
