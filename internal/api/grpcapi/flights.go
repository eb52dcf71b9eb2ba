package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Domenick1991/skysailor/internal/service/flights"
)

const FlightsServiceName = "skysailor.v1.FlightsService"

type FlightsService interface {
	ListFlights(ctx context.Context, req *Empty) (*FlightList, error)
	GetFlight(ctx context.Context, req *GetFlightRequest) (*FlightResponse, error)
	SearchFlights(ctx context.Context, req *flights.SearchCriteria) (*FlightList, error)
}

// FlightsServer exposes the flight catalogue and search over gRPC.
type FlightsServer struct {
	flights flights.FlightUseCase
}

func NewFlightsServer(flights flights.FlightUseCase) *FlightsServer {
	return &FlightsServer{flights: flights}
}

func (s *FlightsServer) ListFlights(ctx context.Context, _ *Empty) (*FlightList, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, toStatus("ListFlights", err)
	}
	return &FlightList{Flights: list}, nil
}

func (s *FlightsServer) GetFlight(ctx context.Context, req *GetFlightRequest) (*FlightResponse, error) {
	flight, err := s.flights.GetByID(ctx, req.ID)
	if err != nil {
		return nil, toStatus("GetFlight", err)
	}
	return &FlightResponse{Flight: flight}, nil
}

func (s *FlightsServer) SearchFlights(ctx context.Context, req *flights.SearchCriteria) (*FlightList, error) {
	found, err := s.flights.Search(ctx, *req)
	if err != nil {
		return nil, toStatus("SearchFlights", err)
	}
	return &FlightList{Flights: found}, nil
}

var flightsServiceDesc = grpc.ServiceDesc{
	ServiceName: FlightsServiceName,
	HandlerType: (*FlightsService)(nil),
	Methods: []grpc.MethodDesc{
		unary(FlightsServiceName, "ListFlights", func(srv any, ctx context.Context, req *Empty) (any, error) {
			return srv.(FlightsService).ListFlights(ctx, req)
		}),
		unary(FlightsServiceName, "GetFlight", func(srv any, ctx context.Context, req *GetFlightRequest) (any, error) {
			return srv.(FlightsService).GetFlight(ctx, req)
		}),
		unary(FlightsServiceName, "SearchFlights", func(srv any, ctx context.Context, req *flights.SearchCriteria) (any, error) {
			return srv.(FlightsService).SearchFlights(ctx, req)
		}),
	},
	Metadata: "skysailor/v1/flights",
}

func RegisterFlightsService(s grpc.ServiceRegistrar, srv FlightsService) {
	s.RegisterService(&flightsServiceDesc, srv)
}
