package repository

import "errors"

var errInvalidSessionEntry = errors.New("invalid session entry in registry")
