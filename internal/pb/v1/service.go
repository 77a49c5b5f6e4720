package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Fully-qualified service and method names.
const (
	NativeSchedulerServiceName       = "activityalarms.v1.NativeScheduler"
	NativeSchedulerScheduleAlarmName = "/" + NativeSchedulerServiceName + "/ScheduleAlarm"
	NativeSchedulerCancelAlarmName   = "/" + NativeSchedulerServiceName + "/CancelAlarm"
	NativeSchedulerListAlarmsName    = "/" + NativeSchedulerServiceName + "/ListAlarms"
)

// NativeSchedulerServer is the server API for the NativeScheduler service.
type NativeSchedulerServer interface {
	ScheduleAlarm(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	CancelAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

// UnimplementedNativeSchedulerServer answers every method with codes.Unimplemented.
type UnimplementedNativeSchedulerServer struct{}

// ScheduleAlarm implements NativeSchedulerServer.
func (UnimplementedNativeSchedulerServer) ScheduleAlarm(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ScheduleAlarm not implemented")
}

// CancelAlarm implements NativeSchedulerServer.
func (UnimplementedNativeSchedulerServer) CancelAlarm(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelAlarm not implemented")
}

// ListAlarms implements NativeSchedulerServer.
func (UnimplementedNativeSchedulerServer) ListAlarms(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAlarms not implemented")
}

// RegisterNativeSchedulerServer registers srv on s.
func RegisterNativeSchedulerServer(s grpc.ServiceRegistrar, srv NativeSchedulerServer) {
	s.RegisterService(&nativeSchedulerServiceDesc, srv)
}

// nativeSchedulerServiceDesc describes the service to grpc.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var nativeSchedulerServiceDesc = grpc.ServiceDesc{
	ServiceName: NativeSchedulerServiceName,
	HandlerType: (*NativeSchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ScheduleAlarm", Handler: scheduleAlarmHandler},
		{MethodName: "CancelAlarm", Handler: cancelAlarmHandler},
		{MethodName: "ListAlarms", Handler: listAlarmsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "activityalarms/v1/native_scheduler",
}

func scheduleAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(NativeSchedulerServer).ScheduleAlarm(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NativeSchedulerScheduleAlarmName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NativeSchedulerServer).ScheduleAlarm(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func cancelAlarmHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(NativeSchedulerServer).CancelAlarm(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NativeSchedulerCancelAlarmName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NativeSchedulerServer).CancelAlarm(ctx, req.(*wrapperspb.StringValue))
	}

	return interceptor(ctx, in, info, handler)
}

func listAlarmsHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(NativeSchedulerServer).ListAlarms(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: NativeSchedulerListAlarmsName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NativeSchedulerServer).ListAlarms(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

// NativeSchedulerClient is the client API for the NativeScheduler service.
type NativeSchedulerClient interface {
	ScheduleAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	CancelAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListAlarms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

// nativeSchedulerClient invokes the service over a client connection.
type nativeSchedulerClient struct {
	cc grpc.ClientConnInterface
}

// NewNativeSchedulerClient returns a client bound to cc.
//
//nolint:ireturn // Mirrors generated client constructors.
func NewNativeSchedulerClient(cc grpc.ClientConnInterface) NativeSchedulerClient {
	return &nativeSchedulerClient{cc: cc}
}

// ScheduleAlarm implements NativeSchedulerClient.
func (c *nativeSchedulerClient) ScheduleAlarm(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, NativeSchedulerScheduleAlarmName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// CancelAlarm implements NativeSchedulerClient.
func (c *nativeSchedulerClient) CancelAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, NativeSchedulerCancelAlarmName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ListAlarms implements NativeSchedulerClient.
func (c *nativeSchedulerClient) ListAlarms(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, NativeSchedulerListAlarmsName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
