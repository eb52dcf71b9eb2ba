package grpcapi

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/skysailor/internal/changefeed"
	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/service/booking"
)

const BookingsServiceName = "skysailor.v1.BookingsService"

type BookingsService interface {
	BookFlight(ctx context.Context, req *BookRequest) (*BookedFlightResponse, error)
	ListActive(ctx context.Context, req *Empty) (*BookedFlightList, error)
	ListArchived(ctx context.Context, req *Empty) (*BookedFlightList, error)
	GetBooking(ctx context.Context, req *BookingRequest) (*BookedFlightResponse, error)
	ArchiveBooking(ctx context.Context, req *ArchiveRequest) (*BookedFlightResponse, error)
	DeleteBooking(ctx context.Context, req *BookingRequest) (*DeleteResponse, error)
	WatchBookedFlights(req *Empty, stream grpc.ServerStream) error
}

// BookingsServer serves the current user's bookings. Every call expects the
// auth interceptor to have put the user id in the context.
type BookingsServer struct {
	bookings booking.BookingUseCase
	nc       *nats.Conn
	prefix   string
}

func NewBookingsServer(bookings booking.BookingUseCase, nc *nats.Conn, prefix string) *BookingsServer {
	return &BookingsServer{bookings: bookings, nc: nc, prefix: prefix}
}

func (s *BookingsServer) BookFlight(ctx context.Context, req *BookRequest) (*BookedFlightResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.Book(ctx, booking.BookRequest{
		UserID:     userID,
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
	})
	if err != nil {
		return nil, toStatus("BookFlight", err)
	}
	return &BookedFlightResponse{BookedFlight: booked}, nil
}

func (s *BookingsServer) ListActive(ctx context.Context, _ *Empty) (*BookedFlightList, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.bookings.ListActive(ctx, userID)
	if err != nil {
		return nil, toStatus("ListActive", err)
	}
	return &BookedFlightList{BookedFlights: list}, nil
}

func (s *BookingsServer) ListArchived(ctx context.Context, _ *Empty) (*BookedFlightList, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.bookings.ListArchived(ctx, userID)
	if err != nil {
		return nil, toStatus("ListArchived", err)
	}
	return &BookedFlightList{BookedFlights: list}, nil
}

func (s *BookingsServer) GetBooking(ctx context.Context, req *BookingRequest) (*BookedFlightResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.Get(ctx, userID, req.ID)
	if err != nil {
		return nil, toStatus("GetBooking", err)
	}
	return &BookedFlightResponse{BookedFlight: booked}, nil
}

func (s *BookingsServer) ArchiveBooking(ctx context.Context, req *ArchiveRequest) (*BookedFlightResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.Archive(ctx, userID, req.ID, req.Archived)
	if err != nil {
		return nil, toStatus("ArchiveBooking", err)
	}
	return &BookedFlightResponse{BookedFlight: booked}, nil
}

func (s *BookingsServer) DeleteBooking(ctx context.Context, req *BookingRequest) (*DeleteResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.bookings.Delete(ctx, userID, req.ID)
	if err != nil {
		return nil, toStatus("DeleteBooking", err)
	}
	return &DeleteResponse{RowsAffected: rows}, nil
}

// WatchBookedFlights streams the user's active bookings: once on subscribe,
// then again after every change notification. A failed reload is logged on the
// server and the stream keeps going.
func (s *BookingsServer) WatchBookedFlights(_ *Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if s.nc == nil {
		return status.Error(codes.Unavailable, "change feed is not configured")
	}

	sub := changefeed.Watch(s.nc, changefeed.BookedFlightsSubject(s.prefix, userID), func(ctx context.Context) ([]domain.BookedFlight, error) {
		return s.bookings.ListActive(ctx, userID)
	})
	defer sub.Unsubscribe()

	for list, err := range sub.Snapshots(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn().Err(err).Str("user_id", userID).Msg("reload booked flights for watcher")
			continue
		}
		if err := stream.SendMsg(&BookedFlightList{BookedFlights: list}); err != nil {
			return err
		}
	}
	return nil
}

var bookingsServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingsServiceName,
	HandlerType: (*BookingsService)(nil),
	Methods: []grpc.MethodDesc{
		unary(BookingsServiceName, "BookFlight", func(srv any, ctx context.Context, req *BookRequest) (any, error) {
			return srv.(BookingsService).BookFlight(ctx, req)
		}),
		unary(BookingsServiceName, "ListActive", func(srv any, ctx context.Context, req *Empty) (any, error) {
			return srv.(BookingsService).ListActive(ctx, req)
		}),
		unary(BookingsServiceName, "ListArchived", func(srv any, ctx context.Context, req *Empty) (any, error) {
			return srv.(BookingsService).ListArchived(ctx, req)
		}),
		unary(BookingsServiceName, "GetBooking", func(srv any, ctx context.Context, req *BookingRequest) (any, error) {
			return srv.(BookingsService).GetBooking(ctx, req)
		}),
		unary(BookingsServiceName, "ArchiveBooking", func(srv any, ctx context.Context, req *ArchiveRequest) (any, error) {
			return srv.(BookingsService).ArchiveBooking(ctx, req)
		}),
		unary(BookingsServiceName, "DeleteBooking", func(srv any, ctx context.Context, req *BookingRequest) (any, error) {
			return srv.(BookingsService).DeleteBooking(ctx, req)
		}),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchBookedFlights",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(BookingsService).WatchBookedFlights(in, stream)
			},
		},
	},
	Metadata: "skysailor/v1/bookings",
}

func RegisterBookingsService(s grpc.ServiceRegistrar, srv BookingsService) {
	s.RegisterService(&bookingsServiceDesc, srv)
}
