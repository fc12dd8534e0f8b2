package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/rwool/linerelay/pkg/service"
	"github.com/rwool/linerelay/pkg/service/queue"
)

// EchoResponse contains an EchoReport and an error to indicate a failure in
// the business logic.
type EchoResponse struct {
	service.EchoReport
	e error
}

// Failed indicates if there was a business logic failure.
func (e EchoResponse) Failed() error {
	return e.e
}

// MakeEchoEndpoint creates a Go kit endpoint for echoing messages back to
// their connection. The request must be a queue.Message.
func MakeEchoEndpoint(w service.WriterService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		msg := request.(queue.Message)
		report, err := w.Echo(ctx, msg)
		return EchoResponse{
			EchoReport: report,
			e:          err,
		}, nil
	}
}
