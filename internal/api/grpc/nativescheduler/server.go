package nativescheduler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	pb "github.com/oshokin/activity-alarms/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ScheduleAlarm(ctx context.Context, alarm *domain.Scheduled) error
	CancelAlarm(ctx context.Context, id string) error
	ListAlarms(ctx context.Context) ([]*domain.Scheduled, error)
}

// Server implements the NativeScheduler gRPC API.
type Server struct {
	pb.UnimplementedNativeSchedulerServer

	// service provides the business logic for scheduling.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ScheduleAlarm arms (or re-arms) an alarm for an absolute time.
func (s *Server) ScheduleAlarm(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	alarm, err := pb.AlarmFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.ScheduleAlarm(ctx, alarm); err != nil {
		return nil, status.Error(codes.Internal, "unable to schedule alarm")
	}

	return new(emptypb.Empty), nil
}

// CancelAlarm drops the alarm with the given id. Unknown ids are accepted.
func (s *Server) CancelAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	if err := s.service.CancelAlarm(ctx, req.GetValue()); err != nil {
		return nil, status.Error(codes.Internal, "unable to cancel alarm")
	}

	return new(emptypb.Empty), nil
}

// ListAlarms returns every pending alarm ordered by fire time.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	alarms, err := s.service.ListAlarms(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to list alarms")
	}

	list, err := pb.AlarmsToList(alarms)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode alarms")
	}

	return list, nil
}
