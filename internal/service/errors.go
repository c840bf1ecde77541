package service

import "errors"

// ErrInvalidID is returned before any call is made for a non-positive id
var ErrInvalidID = errors.New("invalid user id")
