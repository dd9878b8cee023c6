// Package options implements the generic functional-option machinery behind
// the public WithXxx constructors. A package defines its config struct,
// aliases Option[*config], and builds options with New (validating) or
// NoError (infallible).
package options

// Option configures a target of type T. Implementations report invalid
// settings through the returned error; Apply surfaces the first one.
type Option[T any] interface {
	apply(T) error
}

// optionFunc adapts a plain function to the Option interface.
type optionFunc[T any] struct {
	fn func(T) error
}

func (o *optionFunc[T]) apply(target T) error {
	return o.fn(target)
}

// New wraps a validating function as an Option.
func New[T any](fn func(T) error) Option[T] {
	return &optionFunc[T]{fn: fn}
}

// NoError wraps a function that cannot fail as an Option.
func NoError[T any](fn func(T)) Option[T] {
	return &optionFunc[T]{fn: func(target T) error {
		fn(target)
		return nil
	}}
}

// Apply runs the options against target in order, stopping at the first
// error. Later options override earlier ones.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
