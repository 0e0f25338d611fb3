package models

import "errors"

// Error conditions an export run can end with
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrDatastoreUnavailable = errors.New("datastore unavailable")
	ErrDatastoreQuery       = errors.New("datastore query failed")
	ErrOutputWrite          = errors.New("output write failed")
)
