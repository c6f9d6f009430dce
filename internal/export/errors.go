// Package export renders assessment result rows into CSV, PDF or Excel
// documents, applying field-level redaction when anonymization is requested.
package export

import (
	"errors"
	"fmt"
)

// NoDataError reports that the row set was empty or filtered down to
// nothing. It is a non-exceptional failure: callers surface the message as
// a UI state rather than an error page.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string {
	return e.Message
}

// IsNoData reports whether err is (or wraps) a NoDataError.
func IsNoData(err error) bool {
	var noData *NoDataError
	return errors.As(err, &noData)
}

// UpstreamError reports a failure in a data fetch or document library call.
// The underlying cause's message is preserved for the caller.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Op, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
