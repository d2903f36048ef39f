package domain

import "math"

type CategoryTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type TransactionSummary struct {
	TotalIncome       float64                   `json:"totalIncome"`
	TotalExpense      float64                   `json:"totalExpense"`
	NetAmount         float64                   `json:"netAmount"`
	CategoryBreakdown map[string]CategoryTotals `json:"categoryBreakdown"`
}

// SummarizeTransactions folds ledger entries into income/expense totals.
// Expenses count by absolute value so that negatively signed imports
// still reduce the net amount.
func SummarizeTransactions(txs []Transaction) TransactionSummary {
	summary := TransactionSummary{
		CategoryBreakdown: make(map[string]CategoryTotals),
	}

	for _, tx := range txs {
		key := string(CategoryUncategorized)
		if tx.ProductCategory != nil && *tx.ProductCategory != "" {
			key = string(*tx.ProductCategory)
		}
		totals := summary.CategoryBreakdown[key]

		if tx.Type == TransactionIncome {
			summary.TotalIncome += tx.Amount
			totals.Income += tx.Amount
		} else {
			amount := math.Abs(tx.Amount)
			summary.TotalExpense += amount
			totals.Expense += amount
		}
		summary.CategoryBreakdown[key] = totals
	}

	summary.NetAmount = summary.TotalIncome - summary.TotalExpense
	return summary
}
