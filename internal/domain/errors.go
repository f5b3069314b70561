package domain

import "errors"

var (
	ErrInvalidOrExpiredInvitation = errors.New("invalid or expired invitation token")
	ErrAlreadyRegistered          = errors.New("email already registered")
	ErrAlreadyInvited             = errors.New("email already invited")
	ErrInvalidOrExpiredRequest    = errors.New("authentication request invalid or expired")
	ErrInvalidInvitation          = errors.New("invalid invitation")
	ErrEmailMismatch              = errors.New("invitation and request emails do not match")
	ErrVerificationFailed         = errors.New("passkey verification failed")
	ErrUnknownCredential          = errors.New("credential is not registered")
	ErrUserNotFound               = errors.New("user not found")
	ErrCounterRegression          = errors.New("credential counter did not advance")
	ErrInvalidRole                = errors.New("invalid role")
)
