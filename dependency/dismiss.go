package dependency

import "context"

type dismissKey struct{}

// WithDismiss installs the signal a presented child uses to ask its parent to
// clear it.
func WithDismiss(ctx context.Context, dismiss func()) context.Context {
	return context.WithValue(ctx, dismissKey{}, dismiss)
}

// Dismiss asks the parent that presented the running effect to clear it.
// It reports false when the effect does not run under a presentation.
func Dismiss(ctx context.Context) bool {
	dismiss, ok := ctx.Value(dismissKey{}).(func())
	if !ok || dismiss == nil {
		return false
	}
	dismiss()
	return true
}
