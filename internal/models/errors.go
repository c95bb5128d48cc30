package models

import "errors"

var (
	// ErrInvalidInput covers user-correctable upload problems: unsupported
	// file types, empty or truncated files, text that produced no chunks.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotFound means no index exists for the requested file id.
	ErrIndexNotFound = errors.New("index not found")

	// ErrMalformedOutput means the detector response was not a valid JSON
	// findings array even after the substring recovery pass.
	ErrMalformedOutput = errors.New("malformed llm output")

	// ErrEmptyResponse means the provider returned no content.
	ErrEmptyResponse = errors.New("empty llm response")
)
