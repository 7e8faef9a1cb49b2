package models

import "errors"

var (
	// ErrTypeMismatch is returned when a value of the wrong element type is
	// added to a List.
	ErrTypeMismatch = errors.New("list item type mismatch")

	// ErrInvalidDateFormat is returned by ParseDateTime for strings that are
	// implausible or match none of the accepted layouts.
	ErrInvalidDateFormat = errors.New("unsupported datetime format")
)
