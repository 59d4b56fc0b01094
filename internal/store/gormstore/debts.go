package gormstore

import (
	"sort"

	"github.com/MarkoPoloResearchLab/prost/pkg/prost"
)

// netDebts collapses directed purchase sums into one entry per unordered user
// pair. When both directions exist the smaller sum offsets the larger, and
// pairs that net to zero disappear entirely.
func netDebts(rows []debtRow) []prost.DebtSummary {
	gross := make(map[[2]int64]debtRow, len(rows))
	for _, row := range rows {
		gross[[2]int64{row.DebtorID, row.CreditorID}] = row
	}
	seen := make(map[[2]int64]bool, len(rows))
	summaries := make([]prost.DebtSummary, 0, len(rows))
	for key, forward := range gross {
		unordered := key
		if unordered[0] > unordered[1] {
			unordered[0], unordered[1] = unordered[1], unordered[0]
		}
		if seen[unordered] {
			continue
		}
		seen[unordered] = true
		reverse := gross[[2]int64{key[1], key[0]}]
		net := forward.AmountOwed - reverse.AmountOwed
		switch {
		case net > 0:
			summaries = append(summaries, prost.DebtSummary{
				DebtorName:   forward.DebtorName,
				CreditorName: forward.CreditorName,
				AmountOwed:   net,
			})
		case net < 0:
			summaries = append(summaries, prost.DebtSummary{
				DebtorName:   reverse.DebtorName,
				CreditorName: reverse.CreditorName,
				AmountOwed:   -net,
			})
		}
	}
	sort.Slice(summaries, func(left, right int) bool {
		if summaries[left].AmountOwed != summaries[right].AmountOwed {
			return summaries[left].AmountOwed > summaries[right].AmountOwed
		}
		if summaries[left].DebtorName != summaries[right].DebtorName {
			return summaries[left].DebtorName < summaries[right].DebtorName
		}
		return summaries[left].CreditorName < summaries[right].CreditorName
	})
	return summaries
}
