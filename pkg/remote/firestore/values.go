package firestore

import (
	"path"
	"time"

	fs "google.golang.org/api/firestore/v1"
)

func stringValue(s string) fs.Value {
	return fs.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

// boolValue forces the field onto the wire so a false survives the
// omitempty marshalling of the generated types.
func boolValue(b bool) fs.Value {
	return fs.Value{BooleanValue: b, ForceSendFields: []string{"BooleanValue"}}
}

func timestampValue(t time.Time) fs.Value {
	return fs.Value{TimestampValue: t.UTC().Format(time.RFC3339)}
}

func fieldString(doc *fs.Document, name string) string {
	value, ok := doc.Fields[name]
	if !ok {
		return ""
	}
	return value.StringValue
}

func fieldBool(doc *fs.Document, name string) bool {
	value, ok := doc.Fields[name]
	if !ok {
		return false
	}
	return value.BooleanValue
}

func fieldTime(doc *fs.Document, name string) time.Time {
	value, ok := doc.Fields[name]
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value.TimestampValue)
	if err != nil {
		return time.Time{}
	}
	return t
}

// documentID extracts the last path segment of a document name.
func documentID(doc *fs.Document) string {
	return path.Base(doc.Name)
}
