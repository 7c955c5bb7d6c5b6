package solr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is one Solr document keyed by field name.
type Document map[string]any

// UpdateRequest is one JSON update command sent to a core. Adds, deletes and
// the commit travel in the same body so they apply together.
type UpdateRequest struct {
	Core        string
	Add         []Document
	DeleteIDs   []string
	DeleteQuery string
	Commit      bool
}

// IsEmpty reports whether the request carries no mutation.
func (r *UpdateRequest) IsEmpty() bool {
	return len(r.Add) == 0 && len(r.DeleteIDs) == 0 && r.DeleteQuery == ""
}

// MarshalJSON renders the command body. Solr's JSON update format repeats the
// "add" key once per document, which a map or struct cannot express.
func (r *UpdateRequest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	sep := func() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
	}

	for _, doc := range r.Add {
		data, err := json.Marshal(struct {
			Doc Document `json:"doc"`
		}{Doc: doc})
		if err != nil {
			return nil, fmt.Errorf("marshal document %v: %w", doc["id"], err)
		}
		sep()
		buf.WriteString(`"add":`)
		buf.Write(data)
	}

	if len(r.DeleteIDs) > 0 {
		data, err := json.Marshal(r.DeleteIDs)
		if err != nil {
			return nil, fmt.Errorf("marshal delete ids: %w", err)
		}
		sep()
		buf.WriteString(`"delete":`)
		buf.Write(data)
	}

	if r.DeleteQuery != "" {
		data, err := json.Marshal(struct {
			Query string `json:"query"`
		}{Query: r.DeleteQuery})
		if err != nil {
			return nil, fmt.Errorf("marshal delete query: %w", err)
		}
		sep()
		buf.WriteString(`"delete":`)
		buf.Write(data)
	}

	if r.Commit {
		sep()
		buf.WriteString(`"commit":{}`)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UpdateResult is Solr's acknowledgement of an update command.
type UpdateResult struct {
	Status int
	QTime  int
}
