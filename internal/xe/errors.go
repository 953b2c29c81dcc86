package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams        = orz.NewError(10400, "invalid request parameters")
	ErrInvalidToken         = orz.NewError(10403, "invalid or expired token")
	ErrPermissionDenied     = orz.NewError(10401, "you are not allowed to view or modify this data")
	ErrAccountAlreadyUsed   = orz.NewError(10000, "username or email already in use")
	ErrIncorrectPassword    = orz.NewError(10001, "incorrect username or password")
	ErrInvalidImage         = orz.NewError(10002, "unsupported image type or size limit exceeded")
	ErrIncorrectOldPassword = orz.NewError(10003, "incorrect old password")
	ErrAccountDisabled      = orz.NewError(10004, "this account has been disabled")

	ErrTradeNotFound = orz.NewError(10404, "trade not found")
)
