// Package firestore stores expenses and savings entries in Google Cloud
// Firestore through its REST API. It serves as the remote side of the
// fallback repositories; budgets and rollover markers never leave the
// local store.
package firestore

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/oauth2/google"
	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"

	"github.com/bachat/bachat/internal/config"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

type Client struct {
	svc       *fs.Service
	projectID string
}

// NewClient builds a Firestore client from service account credentials.
// Inline JSON wins over a credentials file; with neither set, Application
// Default Credentials apply.
func NewClient(ctx context.Context, cfg config.Firestore) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore backend requires a project id")
	}

	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := fs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create firestore service: %w", err)
	}
	return &Client{svc: svc, projectID: cfg.ProjectID}, nil
}

func clientOptions(ctx context.Context, cfg config.Firestore) ([]option.ClientOption, error) {
	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("could not read firestore credentials file: %w", err)
		}
		credentials = data
	default:
		return nil, nil
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, datastoreScope)
	if err != nil {
		return nil, fmt.Errorf("invalid firestore credentials: %w", err)
	}
	return []option.ClientOption{option.WithTokenSource(jwtConfig.TokenSource(ctx))}, nil
}

// documentsParent is the path under which all collections live.
func (c *Client) documentsParent() string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents", c.projectID)
}

func (c *Client) documentName(collection, id string) string {
	return c.documentsParent() + "/" + collection + "/" + id
}

// listByUser pages through a collection and keeps the documents belonging
// to one user, newest date first. The filtering happens client side: the
// generated REST client exposes runQuery as a unary call that yields only
// the first result, so a paged list is the reliable way to read the whole
// collection.
func (c *Client) listByUser(ctx context.Context, collection, userKey string) ([]*fs.Document, error) {
	documents := make([]*fs.Document, 0)
	call := c.svc.Projects.Databases.Documents.
		List(c.documentsParent(), collection).
		PageSize(300)
	err := call.Pages(ctx, func(page *fs.ListDocumentsResponse) error {
		for _, doc := range page.Documents {
			if fieldString(doc, "userId") == userKey {
				documents = append(documents, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore list on %s failed: %w", collection, err)
	}

	sort.SliceStable(documents, func(i, j int) bool {
		return fieldString(documents[i], "date") > fieldString(documents[j], "date")
	})
	return documents, nil
}

func (c *Client) createDocument(ctx context.Context, collection, id string, fields map[string]fs.Value) error {
	_, err := c.svc.Projects.Databases.Documents.
		CreateDocument(c.documentsParent(), collection, &fs.Document{Fields: fields}).
		DocumentId(id).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("firestore create in %s failed: %w", collection, err)
	}
	return nil
}

func (c *Client) deleteDocument(ctx context.Context, collection, id string) error {
	_, err := c.svc.Projects.Databases.Documents.
		Delete(c.documentName(collection, id)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("firestore delete in %s failed: %w", collection, err)
	}
	return nil
}
