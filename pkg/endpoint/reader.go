package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/rwool/linerelay/pkg/service"
	"github.com/rwool/linerelay/pkg/service/queue"
)

// SubmitResponse contains the response for a call to the Submit endpoint.
type SubmitResponse struct {
	e error
}

// Failed indicates if the message was not accepted.
func (s SubmitResponse) Failed() error {
	return s.e
}

// MakeSubmitEndpoint creates an endpoint for queueing messages read from a
// connection. The request must be a queue.Message.
func MakeSubmitEndpoint(r service.ReaderService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		msg := request.(queue.Message)
		err := r.Submit(ctx, msg)
		return SubmitResponse{e: err}, nil
	}
}
