// Package solr holds Solr's wire payloads: update commands, select parameters
// and the select response, plus query-syntax escaping. It performs no I/O.
package solr
