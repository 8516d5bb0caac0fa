package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidForm     = 1001
	ErrCodeInvalidJSON     = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004
	ErrCodeInvalidSort     = 1005
	ErrCodeRequestTooLarge = 1006

	// Domain state (2xxx)
	ErrCodeBlogNotFound   = 2001
	ErrCodeAuthorNotFound = 2002
	ErrCodePageNotFound   = 2003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeRenderFailed = 4003
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodePageNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
