package screening

import "context"

type Repository interface {
	// Create inserts a new screening result. There is no update path.
	Create(ctx context.Context, r *Result) error
}
