package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// unary builds a method descriptor that decodes Req and runs call behind the
// server's interceptor chain.
func unary[Req any](service, method string, call func(srv any, ctx context.Context, req *Req) (any, error)) grpc.MethodDesc {
	fullMethod := FullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*Req))
			})
		},
	}
}

// FullMethod is the path a client invokes, e.g. "/skysailor.v1.FlightsService/GetFlight".
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}
