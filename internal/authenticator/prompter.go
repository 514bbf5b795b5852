package authenticator

import "context"

// Prompter performs local user verification on behalf of the authenticator.
type Prompter interface {
	// Confirm asks the user to approve an operation.
	Confirm(ctx context.Context, message string) (bool, error)
	// Choose asks the user to pick one of options and returns its index, or
	// -1 when the user declines.
	Choose(ctx context.Context, message string, options []string) (int, error)
}

// AutoApprove approves every request and picks the first option.
type AutoApprove struct{}

func (AutoApprove) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

func (AutoApprove) Choose(_ context.Context, _ string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, nil
	}
	return 0, nil
}
