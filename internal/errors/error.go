package errors

import "github.com/pkg/errors"

var (
	// auth errors
	ErrNoLinkedIdentity = errors.New("no linked mail provider identity")
	ErrNoCredential     = errors.New("no usable mail provider credential")
	ErrRefreshFailed    = errors.New("mail provider token refresh failed")

	// scan errors
	ErrScanNotFound   = errors.New("scan not found")
	ErrScanTerminated = errors.New("scan already in terminal state")
)
