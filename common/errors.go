package common

import "errors"

// Sentinel error kinds, per the error taxonomy: I/O, format, invalid
// configuration, out-of-range, and the searcher's distinguished
// empty-result. Callers wrap these with github.com/pkg/errors to attach
// the offending path or value; the sentinels themselves stay comparable
// with errors.Is.
var (
	ErrIO            = errors.New("i/o error")
	ErrFormat        = errors.New("format error")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrOutOfRange    = errors.New("out of range")
	ErrEmptyResult   = errors.New("empty result")
)
