package comments

import (
	"errors"

	"github.com/anatolykoptev/go_ytdlp/internal/engine/ytdlp"
)

// ErrInvalidURL is returned, unwrapped, when a URL fails validation.
// The message is consumed verbatim by existing clients.
var ErrInvalidURL = errors.New("Invalid or unsupported URL format") //nolint:staticcheck

// ProcessError is the failure of the yt-dlp subprocess.
type ProcessError = ytdlp.ProcessError

// ParseError reports yt-dlp output that is not JSON or has an unusable shape.
type ParseError struct {
	Msg string
	Err error // underlying decoder error, if any
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DownloadError wraps every failure after validation.
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string { return "Failed to download comments: " + e.Err.Error() }

func (e *DownloadError) Unwrap() error { return e.Err }
