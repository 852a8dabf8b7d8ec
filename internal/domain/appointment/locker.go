package appointment

import "context"

// Locker guards a resource/date across processes. Release is always safe
// to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
