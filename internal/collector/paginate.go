package collector

import "context"

// Paginate drains a paginator. more and next are typically the HasMorePages
// method of an SDK paginator and a closure over its NextPage. Pages are
// fetched sequentially and appended in order; the first page error discards
// everything accumulated so far. A paginator with no items yields an empty,
// non-nil slice.
func Paginate[T any](ctx context.Context, more func() bool, next func(context.Context) ([]T, error)) ([]T, error) {
	items := []T{}
	for more() {
		page, err := next(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// Tokens drains a token-based listing that has no SDK paginator (client-go
// Continue tokens, gcloud page tokens). fetch receives the previous token and
// returns the page items and the next token; an empty next token ends the
// listing.
func Tokens[T any](ctx context.Context, fetch func(ctx context.Context, token string) ([]T, string, error)) ([]T, error) {
	items := []T{}
	token := ""
	for {
		page, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if next == "" || next == token {
			return items, nil
		}
		token = next
	}
}
