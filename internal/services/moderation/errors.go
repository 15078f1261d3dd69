package moderation

import (
	"errors"
	"strconv"
)

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("not authorized")
	ErrNotVerified         = errors.New("member is not verified")
	ErrDuplicatePending    = errors.New("item already has a pending moderation entry")
	ErrAlreadyResolved     = errors.New("moderation entry already resolved")
	ErrUnsupportedItemType = errors.New("unsupported item type")
	ErrInvalidAssignee     = errors.New("assignee cannot moderate this tenant")
	ErrRateLimited         = errors.New("too many reports")
)

// RateLimitedError carries the wait a reporter has to respect.
type RateLimitedError struct {
	RetryAfterSec int64
}

func (e *RateLimitedError) Error() string {
	return "too many reports, retry after " + strconv.FormatInt(e.RetryAfterSec, 10) + "s"
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
