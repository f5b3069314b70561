package impl

import "errors"

var (
	ErrEmptyEmail    = errors.New("email must not be empty")
	ErrEmptyToken    = errors.New("token must not be empty")
	ErrEmptyResponse = errors.New("authenticator response must not be empty")
	ErrEmptyID       = errors.New("id must not be empty")
)
