// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"fmt"
)

// APIError is a server-reported error: the response body carried an
// error envelope with a code, an error number and a message.
//
// Error kinds are distinguished by the server error number and can be
// matched with errors.Is against the sentinel values below:
//
//	if errors.Is(err, aqlair.ErrCollectionNotFound) { ... }
type APIError struct {
	// Code is the HTTP status code reported in the envelope.
	Code int
	// Num is the server error number identifying the error kind.
	Num int
	// Message is the server's error message.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (code %d): %s", e.Num, e.Code, e.Message)
}

// Is matches any APIError with the same error number, so the sentinel
// kinds below work with errors.Is regardless of code and message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Num == e.Num
}

// Known server error numbers, as sentinel errors. An unknown error
// number still yields an APIError; it just matches none of these.
var (
	ErrCollectionNotFound       = &APIError{Num: 1203, Message: "collection not found"}
	ErrUniqueConstraintViolated = &APIError{Num: 1210, Message: "unique constraint violated"}
	ErrCollectionTypeInvalid    = &APIError{Num: 1218, Message: "collection type invalid"}
	ErrDatabaseNotFound         = &APIError{Num: 1228, Message: "database not found"}
	ErrGraphNotFound            = &APIError{Num: 1924, Message: "graph not found"}
	ErrEdgeCollectionUsed       = &APIError{Num: 1929, Message: "collection already used in edge definition"}
)

// ContentTypeError reports a response that did not carry a JSON body.
type ContentTypeError struct {
	// ContentType is the Content-Type header of the offending response.
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type %q: response is not JSON", e.ContentType)
}

// ResolveError reports a record whose entity type could not be resolved
// during polymorphic dispatch.
type ResolveError struct {
	// ID is the record identifier, if one was present.
	ID string
	// Reason describes what made the record unresolvable.
	Reason string
}

func (e *ResolveError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("cannot resolve document type: %s", e.Reason)
	}
	return fmt.Sprintf("cannot resolve document type for %q: %s", e.ID, e.Reason)
}
