package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError blocks a submission before any network call.
// Fields maps the offending field to a short reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

// NotFoundError is returned when a key is absent from the fetched collection.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no se encontró el ticket %s", e.Key)
}
