package grpc

// proto.go is the hand-written service descriptor for intake.v1.IntakeService.
// Messages are the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loanintake/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "intake.v1.IntakeService"

// Full method names, as seen by interceptors.
const (
	MethodQuoteEMI                 = "/" + ServiceName + "/QuoteEMI"
	MethodSubmitApplication        = "/" + ServiceName + "/SubmitApplication"
	MethodAdminLogin               = "/" + ServiceName + "/AdminLogin"
	MethodListApplications         = "/" + ServiceName + "/ListApplications"
	MethodDeleteApplication        = "/" + ServiceName + "/DeleteApplication"
	MethodDeleteApplicationsByDate = "/" + ServiceName + "/DeleteApplicationsByDate"
	MethodExportApplications       = "/" + ServiceName + "/ExportApplications"
)

// DeleteApplicationResponse acknowledges a single deletion.
type DeleteApplicationResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// IntakeServiceServer is the server API for IntakeService.
type IntakeServiceServer interface {
	QuoteEMI(context.Context, *dto.QuoteEMIRequest) (*dto.EMIQuoteResponse, error)
	SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error)
	AdminLogin(context.Context, *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListApplications(context.Context, *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error)
	DeleteApplication(context.Context, *dto.DeleteApplicationRequest) (*DeleteApplicationResponse, error)
	DeleteApplicationsByDate(context.Context, *dto.DeleteApplicationsByDateRequest) (*dto.DeleteApplicationsResponse, error)
	ExportApplications(context.Context, *dto.ExportRequest) (*dto.ExportResponse, error)
	mustEmbedUnimplementedIntakeServiceServer()
}

// UnimplementedIntakeServiceServer provides forward-compatible default implementations.
type UnimplementedIntakeServiceServer struct{}

func (UnimplementedIntakeServiceServer) QuoteEMI(context.Context, *dto.QuoteEMIRequest) (*dto.EMIQuoteResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QuoteEMI not implemented")
}
func (UnimplementedIntakeServiceServer) SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitApplication not implemented")
}
func (UnimplementedIntakeServiceServer) AdminLogin(context.Context, *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AdminLogin not implemented")
}
func (UnimplementedIntakeServiceServer) ListApplications(context.Context, *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListApplications not implemented")
}
func (UnimplementedIntakeServiceServer) DeleteApplication(context.Context, *dto.DeleteApplicationRequest) (*DeleteApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteApplication not implemented")
}
func (UnimplementedIntakeServiceServer) DeleteApplicationsByDate(context.Context, *dto.DeleteApplicationsByDateRequest) (*dto.DeleteApplicationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteApplicationsByDate not implemented")
}
func (UnimplementedIntakeServiceServer) ExportApplications(context.Context, *dto.ExportRequest) (*dto.ExportResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ExportApplications not implemented")
}
func (UnimplementedIntakeServiceServer) mustEmbedUnimplementedIntakeServiceServer() {}

// RegisterIntakeServiceServer registers the IntakeServiceServer with the gRPC server.
func RegisterIntakeServiceServer(s grpclib.ServiceRegistrar, srv IntakeServiceServer) {
	s.RegisterService(&_IntakeService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _IntakeService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IntakeServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "QuoteEMI", Handler: unaryHandler(MethodQuoteEMI, IntakeServiceServer.QuoteEMI)},
		{MethodName: "SubmitApplication", Handler: unaryHandler(MethodSubmitApplication, IntakeServiceServer.SubmitApplication)},
		{MethodName: "AdminLogin", Handler: unaryHandler(MethodAdminLogin, IntakeServiceServer.AdminLogin)},
		{MethodName: "ListApplications", Handler: unaryHandler(MethodListApplications, IntakeServiceServer.ListApplications)},
		{MethodName: "DeleteApplication", Handler: unaryHandler(MethodDeleteApplication, IntakeServiceServer.DeleteApplication)},
		{MethodName: "DeleteApplicationsByDate", Handler: unaryHandler(MethodDeleteApplicationsByDate, IntakeServiceServer.DeleteApplicationsByDate)},
		{MethodName: "ExportApplications", Handler: unaryHandler(MethodExportApplications, IntakeServiceServer.ExportApplications)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler builds a grpc.MethodDesc handler for one server method.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(IntakeServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IntakeServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(IntakeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// IntakeServiceClient is the client API for IntakeService. Calls use the
// JSON codec.
type IntakeServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewIntakeServiceClient wraps a client connection.
func NewIntakeServiceClient(cc grpclib.ClientConnInterface) *IntakeServiceClient {
	return &IntakeServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpclib.ClientConnInterface, method string, in any, opts []grpclib.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) QuoteEMI(ctx context.Context, in *dto.QuoteEMIRequest, opts ...grpclib.CallOption) (*dto.EMIQuoteResponse, error) {
	return invoke[dto.EMIQuoteResponse](ctx, c.cc, MethodQuoteEMI, in, opts)
}

func (c *IntakeServiceClient) SubmitApplication(ctx context.Context, in *dto.SubmitApplicationRequest, opts ...grpclib.CallOption) (*dto.SubmitApplicationResponse, error) {
	return invoke[dto.SubmitApplicationResponse](ctx, c.cc, MethodSubmitApplication, in, opts)
}

func (c *IntakeServiceClient) AdminLogin(ctx context.Context, in *dto.AdminLoginRequest, opts ...grpclib.CallOption) (*dto.AdminLoginResponse, error) {
	return invoke[dto.AdminLoginResponse](ctx, c.cc, MethodAdminLogin, in, opts)
}

func (c *IntakeServiceClient) ListApplications(ctx context.Context, in *dto.ListApplicationsRequest, opts ...grpclib.CallOption) (*dto.ListApplicationsResponse, error) {
	return invoke[dto.ListApplicationsResponse](ctx, c.cc, MethodListApplications, in, opts)
}

func (c *IntakeServiceClient) DeleteApplication(ctx context.Context, in *dto.DeleteApplicationRequest, opts ...grpclib.CallOption) (*DeleteApplicationResponse, error) {
	return invoke[DeleteApplicationResponse](ctx, c.cc, MethodDeleteApplication, in, opts)
}

func (c *IntakeServiceClient) DeleteApplicationsByDate(ctx context.Context, in *dto.DeleteApplicationsByDateRequest, opts ...grpclib.CallOption) (*dto.DeleteApplicationsResponse, error) {
	return invoke[dto.DeleteApplicationsResponse](ctx, c.cc, MethodDeleteApplicationsByDate, in, opts)
}

func (c *IntakeServiceClient) ExportApplications(ctx context.Context, in *dto.ExportRequest, opts ...grpclib.CallOption) (*dto.ExportResponse, error) {
	return invoke[dto.ExportResponse](ctx, c.cc, MethodExportApplications, in, opts)
}
