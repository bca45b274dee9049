// Package fetch retrieves remote files through one authenticated session
// shared by the whole batch.
package fetch

import "context"

// Session is an authenticated handle able to fetch URLs. It is not safe
// for concurrent use.
type Session interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Close() error
}

// Opener creates a Session. Opening is expensive and may be interactive.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

type OpenerFunc func(ctx context.Context) (Session, error)

func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}
