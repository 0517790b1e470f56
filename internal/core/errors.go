package core

import "errors"

var (
	ErrUndecodable = errors.New("content is not valid utf-8 text")
	ErrNotFound    = errors.New("remote file not found")
	ErrUnsupported = errors.New("operation not supported by platform")

	ErrDivisionByZero     = errors.New("division by zero")
	ErrUnsupportedFeature = errors.New("feature not available")
	ErrInvalidExpression  = errors.New("invalid expression")
)
