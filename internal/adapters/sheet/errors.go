package sheet

import "errors"

var (
	// ErrNoURL is returned when no spreadsheet URL is configured.
	ErrNoURL = errors.New("sheet: no spreadsheet url configured")
	// ErrStatus is returned for a non-2xx response.
	ErrStatus = errors.New("sheet: unexpected response status")
	// ErrNoHeader is returned when the CSV has no header row.
	ErrNoHeader = errors.New("sheet: missing header row")
)
