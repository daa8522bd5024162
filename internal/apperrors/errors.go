package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrMalformedRecord indicates that a raw platform payload is missing required
// fields or carries unparseable values. The record is rejected as a whole;
// it is never partially ingested.
var ErrMalformedRecord = errors.New("malformed record")

// ErrClassificationUnavailable indicates that the statistical classification
// stage could not be reached (model down, timeout). Callers degrade to the
// rule stage and surface Unclassified instead of failing ingestion.
var ErrClassificationUnavailable = errors.New("classification unavailable")

// ErrUnsupportedTaxYear indicates that no bracket table is registered for the
// requested tax year. No estimate is produced for an unknown year.
var ErrUnsupportedTaxYear = errors.New("unsupported tax year")

// ErrStaleOverrideConflict indicates that a re-ingested transaction changed
// underneath a manual category override. The override is kept but flagged
// stale for review.
var ErrStaleOverrideConflict = errors.New("stale override conflict")
