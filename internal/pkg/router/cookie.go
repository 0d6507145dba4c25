package router

import "net/http"

type cookieError struct {
	err     error
	cookies []*http.Cookie
}

func (e *cookieError) Error() string { return e.err.Error() }

func (e *cookieError) Unwrap() error { return e.err }

func (e *cookieError) Cookies() []*http.Cookie { return e.cookies }

// WithCookies attaches cookies to an error so the error response still sets
// them, typically to clear a session cookie on an auth failure.
func WithCookies(err error, cookies ...*http.Cookie) error {
	if err == nil {
		return nil
	}
	return &cookieError{err: err, cookies: cookies}
}
