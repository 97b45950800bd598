package grill

import "errors"

// ErrInvalidRules is returned when game rules fail validation
var ErrInvalidRules = errors.New("invalid rules")
