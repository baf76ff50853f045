package backend

import "context"

// MutationKind names what a mutation does to server state.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// InvalidationEvent is emitted after a successful mutation.
type InvalidationEvent struct {
	Kind         MutationKind
	AffectedKeys []string
}

// Mutation declares how a value of type T becomes a backend request and
// which query keys it makes stale. Nil extractors contribute nothing.
type Mutation[T any] struct {
	Kind      MutationKind
	Method    string
	Path      string
	Params    func(T) map[string]string
	Body      func(T) any
	StaleKeys func(T) []string
}

// ToRequest builds the request for v without touching the network.
func (m Mutation[T]) ToRequest(v T) Request {
	req := Request{Method: m.Method, URL: m.Path}
	if m.Params != nil {
		req.Params = m.Params(v)
	}
	if m.Body != nil {
		req.Data = m.Body(v)
	}
	return req
}

// Event returns the invalidation event for v.
func (m Mutation[T]) Event(v T) InvalidationEvent {
	ev := InvalidationEvent{Kind: m.Kind}
	if m.StaleKeys != nil {
		ev.AffectedKeys = m.StaleKeys(v)
	}
	return ev
}

// Callbacks are optional side effects run after the request completes.
type Callbacks[R any] struct {
	OnSuccess func(R)
	OnError   func(error)
}

// Mutate sends m's request for v and decodes the response into R. On
// success the stale keys are invalidated before OnSuccess runs. Concurrent
// submissions of the same value are not deduplicated.
func Mutate[T, R any](ctx context.Context, c *Client, m Mutation[T], v T, cb Callbacks[R]) (R, error) {
	var result R
	if err := c.Do(ctx, m.ToRequest(v), &result); err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return result, err
	}

	c.Invalidate(m.Event(v))
	if cb.OnSuccess != nil {
		cb.OnSuccess(result)
	}
	return result, nil
}
