package models

import "errors"

var ErrImmutable = errors.New("record is append-only")
