package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// -----------------------------------------------------------------------------
// Service descriptor, client stub and server plumbing for the control service.
// Maintained by hand on top of the JSON codec; there is no generation step.
// -----------------------------------------------------------------------------

// ControlServiceName is the fully qualified gRPC service name
const ControlServiceName = "streamobserver.control.v1.ControlService"

func fullMethod(method string) string {
	return "/" + ControlServiceName + "/" + method
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// ControlServiceClient is the client API for the control service
type ControlServiceClient interface {
	ListWatchers(ctx context.Context, in *ListWatchersRequest, opts ...grpc.CallOption) (*ListWatchersResponse, error)
	GetWatcherStatus(ctx context.Context, in *GetWatcherStatusRequest, opts ...grpc.CallOption) (*WatcherStatusResponse, error)
	AddWatch(ctx context.Context, in *AddWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	RemoveWatch(ctx context.Context, in *RemoveWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	StartWatch(ctx context.Context, in *StartWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	StopWatch(ctx context.Context, in *StopWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	AddStreams(ctx context.Context, in *AddStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	RemoveStreams(ctx context.Context, in *RemoveStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	RefreshStreams(ctx context.Context, in *RefreshStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	ListViews(ctx context.Context, in *ListViewsRequest, opts ...grpc.CallOption) (*ListViewsResponse, error)
	GetView(ctx context.Context, in *GetViewRequest, opts ...grpc.CallOption) (*GetViewResponse, error)
	HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type controlServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewControlServiceClient wraps a client connection with the typed API
func NewControlServiceClient(cc grpc.ClientConnInterface) ControlServiceClient {
	return &controlServiceClient{cc}
}

func (c *controlServiceClient) ListWatchers(ctx context.Context, in *ListWatchersRequest, opts ...grpc.CallOption) (*ListWatchersResponse, error) {
	out := new(ListWatchersResponse)
	if err := c.cc.Invoke(ctx, fullMethod("ListWatchers"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) GetWatcherStatus(ctx context.Context, in *GetWatcherStatusRequest, opts ...grpc.CallOption) (*WatcherStatusResponse, error) {
	out := new(WatcherStatusResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetWatcherStatus"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) AddWatch(ctx context.Context, in *AddWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("AddWatch"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) RemoveWatch(ctx context.Context, in *RemoveWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("RemoveWatch"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) StartWatch(ctx context.Context, in *StartWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("StartWatch"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) StopWatch(ctx context.Context, in *StopWatchRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("StopWatch"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) AddStreams(ctx context.Context, in *AddStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("AddStreams"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) RemoveStreams(ctx context.Context, in *RemoveStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("RemoveStreams"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) RefreshStreams(ctx context.Context, in *RefreshStreamsRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.cc.Invoke(ctx, fullMethod("RefreshStreams"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) ListViews(ctx context.Context, in *ListViewsRequest, opts ...grpc.CallOption) (*ListViewsResponse, error) {
	out := new(ListViewsResponse)
	if err := c.cc.Invoke(ctx, fullMethod("ListViews"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) GetView(ctx context.Context, in *GetViewRequest, opts ...grpc.CallOption) (*GetViewResponse, error) {
	out := new(GetViewResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetView"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, fullMethod("HealthCheck"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// ControlServiceServer is the server API for the control service
type ControlServiceServer interface {
	ListWatchers(context.Context, *ListWatchersRequest) (*ListWatchersResponse, error)
	GetWatcherStatus(context.Context, *GetWatcherStatusRequest) (*WatcherStatusResponse, error)
	AddWatch(context.Context, *AddWatchRequest) (*ControlResponse, error)
	RemoveWatch(context.Context, *RemoveWatchRequest) (*ControlResponse, error)
	StartWatch(context.Context, *StartWatchRequest) (*ControlResponse, error)
	StopWatch(context.Context, *StopWatchRequest) (*ControlResponse, error)
	AddStreams(context.Context, *AddStreamsRequest) (*ControlResponse, error)
	RemoveStreams(context.Context, *RemoveStreamsRequest) (*ControlResponse, error)
	RefreshStreams(context.Context, *RefreshStreamsRequest) (*ControlResponse, error)
	ListViews(context.Context, *ListViewsRequest) (*ListViewsResponse, error)
	GetView(context.Context, *GetViewRequest) (*GetViewResponse, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

// UnimplementedControlServiceServer provides forward-compatible defaults
type UnimplementedControlServiceServer struct{}

func (UnimplementedControlServiceServer) ListWatchers(context.Context, *ListWatchersRequest) (*ListWatchersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListWatchers not implemented")
}
func (UnimplementedControlServiceServer) GetWatcherStatus(context.Context, *GetWatcherStatusRequest) (*WatcherStatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetWatcherStatus not implemented")
}
func (UnimplementedControlServiceServer) AddWatch(context.Context, *AddWatchRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddWatch not implemented")
}
func (UnimplementedControlServiceServer) RemoveWatch(context.Context, *RemoveWatchRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RemoveWatch not implemented")
}
func (UnimplementedControlServiceServer) StartWatch(context.Context, *StartWatchRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StartWatch not implemented")
}
func (UnimplementedControlServiceServer) StopWatch(context.Context, *StopWatchRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StopWatch not implemented")
}
func (UnimplementedControlServiceServer) AddStreams(context.Context, *AddStreamsRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddStreams not implemented")
}
func (UnimplementedControlServiceServer) RemoveStreams(context.Context, *RemoveStreamsRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RemoveStreams not implemented")
}
func (UnimplementedControlServiceServer) RefreshStreams(context.Context, *RefreshStreamsRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RefreshStreams not implemented")
}
func (UnimplementedControlServiceServer) ListViews(context.Context, *ListViewsRequest) (*ListViewsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListViews not implemented")
}
func (UnimplementedControlServiceServer) GetView(context.Context, *GetViewRequest) (*GetViewResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetView not implemented")
}
func (UnimplementedControlServiceServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method HealthCheck not implemented")
}

// -----------------------------------------------------------------------------

// RegisterControlServiceServer attaches the implementation to a gRPC server
func RegisterControlServiceServer(s grpc.ServiceRegistrar, srv ControlServiceServer) {
	s.RegisterService(&ControlService_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------
// Method handlers
// -----------------------------------------------------------------------------

func _ControlService_ListWatchers_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListWatchersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).ListWatchers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListWatchers")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).ListWatchers(ctx, req.(*ListWatchersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_GetWatcherStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetWatcherStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).GetWatcherStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetWatcherStatus")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).GetWatcherStatus(ctx, req.(*GetWatcherStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_AddWatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AddWatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).AddWatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("AddWatch")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).AddWatch(ctx, req.(*AddWatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_RemoveWatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveWatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).RemoveWatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("RemoveWatch")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).RemoveWatch(ctx, req.(*RemoveWatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_StartWatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StartWatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).StartWatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("StartWatch")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).StartWatch(ctx, req.(*StartWatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_StopWatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StopWatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).StopWatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("StopWatch")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).StopWatch(ctx, req.(*StopWatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_AddStreams_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AddStreamsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).AddStreams(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("AddStreams")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).AddStreams(ctx, req.(*AddStreamsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_RemoveStreams_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveStreamsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).RemoveStreams(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("RemoveStreams")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).RemoveStreams(ctx, req.(*RemoveStreamsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_RefreshStreams_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RefreshStreamsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).RefreshStreams(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("RefreshStreams")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).RefreshStreams(ctx, req.(*RefreshStreamsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_ListViews_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListViewsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).ListViews(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListViews")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).ListViews(ctx, req.(*ListViewsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_GetView_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetViewRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).GetView(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetView")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).GetView(ctx, req.(*GetViewRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ControlService_HealthCheck_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServiceServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("HealthCheck")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServiceServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------

// ControlService_ServiceDesc wires method names to their handlers
var ControlService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ControlServiceName,
	HandlerType: (*ControlServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListWatchers", Handler: _ControlService_ListWatchers_Handler},
		{MethodName: "GetWatcherStatus", Handler: _ControlService_GetWatcherStatus_Handler},
		{MethodName: "AddWatch", Handler: _ControlService_AddWatch_Handler},
		{MethodName: "RemoveWatch", Handler: _ControlService_RemoveWatch_Handler},
		{MethodName: "StartWatch", Handler: _ControlService_StartWatch_Handler},
		{MethodName: "StopWatch", Handler: _ControlService_StopWatch_Handler},
		{MethodName: "AddStreams", Handler: _ControlService_AddStreams_Handler},
		{MethodName: "RemoveStreams", Handler: _ControlService_RemoveStreams_Handler},
		{MethodName: "RefreshStreams", Handler: _ControlService_RefreshStreams_Handler},
		{MethodName: "ListViews", Handler: _ControlService_ListViews_Handler},
		{MethodName: "GetView", Handler: _ControlService_GetView_Handler},
		{MethodName: "HealthCheck", Handler: _ControlService_HealthCheck_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "streamobserver.control.v1 (json codec)",
}
