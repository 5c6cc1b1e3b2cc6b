package models

// FirestoreEvent is the JSON payload of a Firestore document trigger.
// Value is the document after the write, OldValue the document before it.
type FirestoreEvent struct {
	Value    FirestoreDocument `json:"value"`
	OldValue FirestoreDocument `json:"oldValue"`
}

// FirestoreDocument is a document snapshot in the trigger's typed-value encoding.
type FirestoreDocument struct {
	Name   string                    `json:"name"`
	Fields map[string]FirestoreValue `json:"fields"`
}

// FirestoreValue holds one typed field. Only string fields are read by the pipeline.
type FirestoreValue struct {
	StringValue *string `json:"stringValue,omitempty"`
}

// String returns the string value of field, or "" when it is absent or not a string.
func (d FirestoreDocument) String(field string) string {
	v, ok := d.Fields[field]
	if !ok || v.StringValue == nil {
		return ""
	}
	return *v.StringValue
}
