package schedule

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types the importer cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmptyInput indicates an upload without any content rows.
	ErrEmptyInput = errors.New("empty input")

	// ErrTeamsUnknown means a fixture lacks a home or away team.
	ErrTeamsUnknown = errors.New("home and away team must both be known")

	// ErrNotFound indicates the record is in neither store.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord wraps structural validation failures.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrStoreWrite wraps failures of the persisted store.
	ErrStoreWrite = errors.New("persisted store write failed")

	// ErrCacheWrite wraps failures of the client-local cache.
	ErrCacheWrite = errors.New("cache write failed")

	// ErrAlreadyAuthoritative is returned when promoting a persisted record.
	ErrAlreadyAuthoritative = errors.New("record is already authoritative")
)
