package display

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/MarkoPoloResearchLab/prost/pkg/prost"
	"github.com/olekukonko/tablewriter"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	purchaseColumns = []string{"user_name", "drink_name", "cost", "timestamp", "orderer_name"}
	stockColumns    = []string{"drink_name", "brand", "total_remaining"}
	debtColumns     = []string{"debtor_name", "creditor_name", "amount_owed"}
)

// RenderPurchases writes the recent-purchases read model as a table, newest
// first, with headers derived from the column names.
func RenderPurchases(writer io.Writer, records []prost.PurchaseRecord) {
	table := newTable(writer, purchaseColumns)
	for _, record := range records {
		table.Append([]string{
			record.UserName,
			record.DrinkName,
			formatAmount(record.Cost),
			record.Timestamp.Format(timestampLayout),
			record.OrdererName,
		})
	}
	table.Render()
}

// RenderStock writes the per-drink remaining quantities.
func RenderStock(writer io.Writer, levels []prost.StockLevel) {
	table := newTable(writer, stockColumns)
	for _, level := range levels {
		table.Append([]string{
			level.DrinkName,
			level.Brand,
			fmt.Sprintf("%d", level.TotalRemaining),
		})
	}
	table.Render()
}

// RenderDebts writes the who-owes-whom summary, largest debt first.
func RenderDebts(writer io.Writer, debts []prost.DebtSummary) {
	table := newTable(writer, debtColumns)
	for _, debt := range debts {
		table.Append([]string{
			debt.DebtorName,
			debt.CreditorName,
			formatAmount(debt.AmountOwed),
		})
	}
	table.Render()
}

func newTable(writer io.Writer, columns []string) *tablewriter.Table {
	table := tablewriter.NewWriter(writer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(headersFor(columns))
	return table
}

// headersFor turns column names into display headers: separators become
// spaces and each word is title-cased.
func headersFor(columns []string) []string {
	headers := make([]string, 0, len(columns))
	for _, column := range columns {
		headers = append(headers, titleCase(strings.ReplaceAll(column, "_", " ")))
	}
	return headers
}

func titleCase(value string) string {
	words := strings.Fields(value)
	for index, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[index] = strings.ToUpper(string(first)) + word[size:]
	}
	return strings.Join(words, " ")
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
