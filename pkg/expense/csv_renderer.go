package expense

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// CsvRenderer renders a month of expenses for export.
type CsvRenderer interface {
	Render(expenses []Expense, summary MonthSummary) (string, error)
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

func (t *CsvRendererImpl) Render(expenses []Expense, summary MonthSummary) (string, error) {
	data := make([][]string, 0, len(expenses)+4)
	data = append(data, []string{"Date", "Category", "Description", "Amount", "Recurring"})
	for _, expense := range expenses {
		data = append(data, []string{
			expense.Date,
			expense.Category,
			expense.Description,
			expense.Amount.StringFixed(2),
			strconv.FormatBool(expense.Recurring),
		})
	}
	data = append(data,
		[]string{""},
		[]string{"Total", "", "", summary.Total.StringFixed(2), ""},
		[]string{"Budget", "", "", summary.Budget.StringFixed(2), ""},
		[]string{"Remaining", "", "", summary.Remaining.StringFixed(2), ""},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
