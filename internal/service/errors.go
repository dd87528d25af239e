package service

import "errors"

// Domain errors. Handlers translate these to HTTP outcomes; the download
// flow additionally distinguishes the three "gone" variants from NotFound
// because the replay fallback depends on that distinction.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrShareNotFound = errors.New("share link not found")

	ErrShareInactive     = errors.New("share link inactive")
	ErrShareExpired      = errors.New("share link expired")
	ErrShareLimitReached = errors.New("share download limit reached")

	ErrSharePasswordInvalid = errors.New("share password invalid")
)

// IsShareGone reports whether err is one of the unusable-link variants
// that collapse to the Gone outcome at the boundary.
func IsShareGone(err error) bool {
	return errors.Is(err, ErrShareInactive) ||
		errors.Is(err, ErrShareExpired) ||
		errors.Is(err, ErrShareLimitReached)
}
