package span

import "errors"

var (
	// ErrRange is returned for brightness bounds or sun times the builder cannot work with
	ErrRange = errors.New("span range error")

	// ErrEmptyTable is returned when resolving against a table without entries
	ErrEmptyTable = errors.New("span table is empty")
)
