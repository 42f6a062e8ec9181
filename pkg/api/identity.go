package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const IdentityServiceName = "patungan.v1.IdentityService"

const (
	IdentityServiceRegisterProcedure   = "/patungan.v1.IdentityService/Register"
	IdentityServiceGetUserProcedure    = "/patungan.v1.IdentityService/GetUser"
	IdentityServiceDeleteDataProcedure = "/patungan.v1.IdentityService/DeleteData"
)

type IdentityServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error)
	DeleteData(context.Context, *connect.Request[DeleteDataRequest]) (*connect.Response[DeleteDataResponse], error)
}

func NewIdentityServiceHandler(svc IdentityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(IdentityServiceRegisterProcedure, connect.NewUnaryHandler(IdentityServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(IdentityServiceGetUserProcedure, connect.NewUnaryHandler(IdentityServiceGetUserProcedure, svc.GetUser, opts...))
	mux.Handle(IdentityServiceDeleteDataProcedure, connect.NewUnaryHandler(IdentityServiceDeleteDataProcedure, svc.DeleteData, opts...))
	return "/" + IdentityServiceName + "/", mux
}

type IdentityServiceClient struct {
	register   *connect.Client[RegisterRequest, RegisterResponse]
	getUser    *connect.Client[GetUserRequest, GetUserResponse]
	deleteData *connect.Client[DeleteDataRequest, DeleteDataResponse]
}

func NewIdentityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *IdentityServiceClient {
	opts = clientOptions(opts)
	return &IdentityServiceClient{
		register:   connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+IdentityServiceRegisterProcedure, opts...),
		getUser:    connect.NewClient[GetUserRequest, GetUserResponse](httpClient, baseURL+IdentityServiceGetUserProcedure, opts...),
		deleteData: connect.NewClient[DeleteDataRequest, DeleteDataResponse](httpClient, baseURL+IdentityServiceDeleteDataProcedure, opts...),
	}
}

func (c *IdentityServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *IdentityServiceClient) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *IdentityServiceClient) DeleteData(ctx context.Context, req *connect.Request[DeleteDataRequest]) (*connect.Response[DeleteDataResponse], error) {
	return c.deleteData.CallUnary(ctx, req)
}

// SetIdentity stamps the identity headers on an outgoing request.
func SetIdentity(h http.Header, email, name string) {
	h.Set(HeaderUserEmail, email)
	if name != "" {
		h.Set(HeaderUserName, name)
	}
}
