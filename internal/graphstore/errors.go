package graphstore

import "errors"

var (
	ErrNotFound = errors.New("graphstore: not found")
	ErrClosed   = errors.New("graphstore: writer closed")
)
