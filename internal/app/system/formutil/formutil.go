// Package formutil decodes JSON request bodies and path parameters into the
// shapes handlers pass to services.
//
// Update payloads need to tell "field absent" apart from "field sent as
// null". Pointer fields cover strings; OptionalID covers nullable ids such as
// a task's assignee_id.
package formutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// InvalidBodyMessage is returned for bodies that are not a JSON object.
const InvalidBodyMessage = "Invalid request body"

// Decode reads the request body into dst. An empty body leaves dst
// untouched. Unknown fields are ignored.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return apperr.Invalid(InvalidBodyMessage)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Invalid(InvalidBodyMessage)
	}
	return nil
}

// DecodeFields unmarshals the JSON object raw into dst and returns the keys
// the object carried, sorted. Keys sent as null are included. An absent or
// null object leaves dst untouched and returns no keys.
func DecodeFields(raw json.RawMessage, dst any) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, apperr.Invalid(InvalidBodyMessage)
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return nil, apperr.Invalid(InvalidBodyMessage)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// PathID parses the named chi URL parameter as an ObjectID. ok is false when
// the parameter is missing or malformed.
func PathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// OptionalID is a JSON id field that may be absent, null, or a value.
//
//	absent          → Set=false
//	null or ""      → Set=true, Null=true
//	"<hex>"         → Set=true, ID=<hex>
//	anything else   → Set=true, Malformed=true
type OptionalID struct {
	Set       bool
	Null      bool
	Malformed bool
	ID        primitive.ObjectID
}

// UnmarshalJSON records that the field was present and parses its value.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		o.Malformed = true
		return nil
	}
	if s == "" {
		o.Null = true
		return nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		o.Malformed = true
		return nil
	}
	o.ID = id
	return nil
}

// Some returns an OptionalID holding id.
func Some(id primitive.ObjectID) OptionalID { return OptionalID{Set: true, ID: id} }

// Null returns an OptionalID explicitly cleared.
func Null() OptionalID { return OptionalID{Set: true, Null: true} }
