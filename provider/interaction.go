package provider

import "context"

// RequestResponse takes one input and returns one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Sink accepts input with no meaningful output, such as a message publish.
type Sink[I any] interface {
	Provider
	Send(ctx context.Context, input I) error
}
