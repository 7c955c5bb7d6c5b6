package solr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Response is the decoded body of a select request.
type Response struct {
	Header      ResponseHeader                 `json:"responseHeader"`
	Result      ResultBlock                    `json:"response"`
	FacetCounts FacetCounts                    `json:"facet_counts"`
	Highlights  map[string]map[string][]string `json:"highlighting"`
	Spellcheck  Spellcheck                     `json:"spellcheck"`
}

// ResponseHeader carries Solr's status and timing.
type ResponseHeader struct {
	Status int `json:"status"`
	QTime  int `json:"QTime"`
}

// ResultBlock holds the matched documents.
type ResultBlock struct {
	NumFound int64      `json:"numFound"`
	Start    int64      `json:"start"`
	Docs     []Document `json:"docs"`
}

// FacetCounts holds facet field counts in Solr's flat list layout.
type FacetCounts struct {
	FacetFields map[string][]any `json:"facet_fields"`
}

// FacetValue is one facet value with its count.
type FacetValue struct {
	Value string
	Count int
}

// Field decodes the flat [value, count, value, count...] list of a facet field.
func (f FacetCounts) Field(name string) []FacetValue {
	raw := f.FacetFields[name]
	out := make([]FacetValue, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		count, ok := raw[i+1].(float64)
		if !ok {
			continue
		}
		out = append(out, FacetValue{Value: fmt.Sprint(raw[i]), Count: int(count)})
	}
	return out
}

// Spellcheck holds the spellcheck component output.
type Spellcheck struct {
	Collations json.RawMessage `json:"collations"`
}

// Collation returns the first collated suggestion, or "" when Solr had none.
// Both the plain and the extended collation layouts are understood.
func (s Spellcheck) Collation() string {
	if len(s.Collations) == 0 {
		return ""
	}

	var flat []json.RawMessage
	if err := json.Unmarshal(s.Collations, &flat); err == nil {
		for i := 0; i+1 < len(flat); i += 2 {
			var key string
			if json.Unmarshal(flat[i], &key) != nil || key != "collation" {
				continue
			}
			if c := decodeCollation(flat[i+1]); c != "" {
				return c
			}
		}
		return ""
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(s.Collations, &named); err == nil {
		return decodeCollation(named["collation"])
	}
	return ""
}

func decodeCollation(raw json.RawMessage) string {
	var plain string
	if json.Unmarshal(raw, &plain) == nil {
		return plain
	}
	var extended struct {
		CollationQuery string `json:"collationQuery"`
	}
	if json.Unmarshal(raw, &extended) == nil {
		return extended.CollationQuery
	}
	return ""
}

// ErrorBody is the error block Solr returns on rejected requests.
type ErrorBody struct {
	Error struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}

// Error is a request Solr rejected or failed to process.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("solr error %d: %s", e.Status, e.Message)
}

// IsRejected reports whether err is a request Solr answered with an error status,
// as opposed to a transport failure.
func IsRejected(err error) bool {
	var solrErr *Error
	return errors.As(err, &solrErr)
}
