package models

import "errors"

// ErrMissingRoot is returned when a schema declares no top-level element or
// property, leaving nothing to walk.
var ErrMissingRoot = errors.New("schema declares no root element")
