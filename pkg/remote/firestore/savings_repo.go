package firestore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	fs "google.golang.org/api/firestore/v1"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/savings"
)

const savingsCollection = "savings"

// SavingsRepo implements savings.Repo on top of a Firestore collection.
type SavingsRepo struct {
	client *Client
}

func NewSavingsRepo(client *Client) *SavingsRepo {
	return &SavingsRepo{client: client}
}

func (r *SavingsRepo) Store(ctx context.Context, entry savings.Entry) (savings.Entry, error) {
	fields := map[string]fs.Value{
		"userId":         stringValue(entry.UserKey),
		"amount":         stringValue(entry.Amount.String()),
		"description":    stringValue(entry.Description),
		"date":           stringValue(entry.Date),
		"isAutoRollover": boolValue(entry.IsAutoRollover),
		"createdAt":      timestampValue(entry.CreatedAt),
	}
	if entry.FromMonth != "" {
		fields["fromMonth"] = stringValue(entry.FromMonth.String())
	}
	if err := r.client.createDocument(ctx, savingsCollection, entry.ID, fields); err != nil {
		return savings.Entry{}, err
	}
	return entry, nil
}

func (r *SavingsRepo) List(ctx context.Context, userKey string) ([]savings.Entry, error) {
	documents, err := r.client.listByUser(ctx, savingsCollection, userKey)
	if err != nil {
		return nil, err
	}

	entries := make([]savings.Entry, 0, len(documents))
	for _, doc := range documents {
		entry, err := entryFromDocument(doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *SavingsRepo) Delete(ctx context.Context, userKey string, id string) error {
	return r.client.deleteDocument(ctx, savingsCollection, id)
}

func entryFromDocument(doc *fs.Document) (savings.Entry, error) {
	amount, err := decimal.NewFromString(fieldString(doc, "amount"))
	if err != nil {
		return savings.Entry{}, fmt.Errorf("corrupted savings amount in document %s: %w", doc.Name, err)
	}
	return savings.Entry{
		ID:             documentID(doc),
		UserKey:        fieldString(doc, "userId"),
		Amount:         amount,
		Description:    fieldString(doc, "description"),
		Date:           fieldString(doc, "date"),
		IsAutoRollover: fieldBool(doc, "isAutoRollover"),
		FromMonth:      clock.MonthKey(fieldString(doc, "fromMonth")),
		CreatedAt:      fieldTime(doc, "createdAt"),
	}, nil
}
