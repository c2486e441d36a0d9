package query

import "errors"

var ErrUnknownKey = errors.New("no fetch function registered for this key")
