package access

import "context"

type propsKey struct{}

// WithProps stores the gate's props bundle in ctx.
func WithProps(ctx context.Context, props *Props) context.Context {
	return context.WithValue(ctx, propsKey{}, props)
}

// PropsFrom returns the props bundle stored by WithProps.
func PropsFrom(ctx context.Context) (*Props, bool) {
	props, ok := ctx.Value(propsKey{}).(*Props)
	return props, ok && props != nil
}
