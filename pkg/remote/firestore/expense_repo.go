package firestore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	fs "google.golang.org/api/firestore/v1"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/expense"
)

const expensesCollection = "expenses"

// ExpenseRepo implements expense.Repo on top of a Firestore collection.
// Amounts travel as strings so no precision is lost in transit.
type ExpenseRepo struct {
	client *Client
}

func NewExpenseRepo(client *Client) *ExpenseRepo {
	return &ExpenseRepo{client: client}
}

func (r *ExpenseRepo) Store(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	fields := map[string]fs.Value{
		"userId":      stringValue(e.UserKey),
		"amount":      stringValue(e.Amount.String()),
		"category":    stringValue(e.Category),
		"description": stringValue(e.Description),
		"date":        stringValue(e.Date),
		"recurring":   boolValue(e.Recurring),
		"createdAt":   timestampValue(e.CreatedAt),
	}
	if err := r.client.createDocument(ctx, expensesCollection, e.ID, fields); err != nil {
		return expense.Expense{}, err
	}
	return e, nil
}

// ListForMonth fetches the user's expenses and narrows them to the month
// locally. Date is a "YYYY-MM-DD" string, so month membership is a prefix
// match.
func (r *ExpenseRepo) ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]expense.Expense, error) {
	documents, err := r.client.listByUser(ctx, expensesCollection, userKey)
	if err != nil {
		return nil, err
	}

	expenses := make([]expense.Expense, 0, len(documents))
	for _, doc := range documents {
		e, err := expenseFromDocument(doc)
		if err != nil {
			return nil, err
		}
		if !month.Contains(e.Date) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, userKey string, id string) error {
	return r.client.deleteDocument(ctx, expensesCollection, id)
}

func expenseFromDocument(doc *fs.Document) (expense.Expense, error) {
	amount, err := decimal.NewFromString(fieldString(doc, "amount"))
	if err != nil {
		return expense.Expense{}, fmt.Errorf("corrupted expense amount in document %s: %w", doc.Name, err)
	}
	return expense.Expense{
		ID:          documentID(doc),
		UserKey:     fieldString(doc, "userId"),
		Amount:      amount,
		Category:    fieldString(doc, "category"),
		Description: fieldString(doc, "description"),
		Date:        fieldString(doc, "date"),
		Recurring:   fieldBool(doc, "recurring"),
		CreatedAt:   fieldTime(doc, "createdAt"),
	}, nil
}
