package main

import "errors"

// Sentinel errors for command operations
var (
	ErrBareNeedsOneTarget = errors.New("--bare requires exactly one target")
)
