package common

import "github.com/pkg/errors"

// ErrInvalidRecord is returned for transaction records that lack a required field
var ErrInvalidRecord = errors.New("invalid transaction record")
