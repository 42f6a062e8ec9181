package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const ChatServiceName = "patungan.v1.ChatService"

const (
	ChatServiceSendMessageProcedure   = "/patungan.v1.ChatService/SendMessage"
	ChatServiceGetHistoryProcedure    = "/patungan.v1.ChatService/GetHistory"
	ChatServiceAppendHistoryProcedure = "/patungan.v1.ChatService/AppendHistory"
	ChatServiceClearHistoryProcedure  = "/patungan.v1.ChatService/ClearHistory"
)

type ChatServiceHandler interface {
	SendMessage(context.Context, *connect.Request[SendMessageRequest]) (*connect.Response[SendMessageResponse], error)
	GetHistory(context.Context, *connect.Request[GetHistoryRequest]) (*connect.Response[GetHistoryResponse], error)
	AppendHistory(context.Context, *connect.Request[AppendHistoryRequest]) (*connect.Response[AppendHistoryResponse], error)
	ClearHistory(context.Context, *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error)
}

func NewChatServiceHandler(svc ChatServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ChatServiceSendMessageProcedure, connect.NewUnaryHandler(ChatServiceSendMessageProcedure, svc.SendMessage, opts...))
	mux.Handle(ChatServiceGetHistoryProcedure, connect.NewUnaryHandler(ChatServiceGetHistoryProcedure, svc.GetHistory, opts...))
	mux.Handle(ChatServiceAppendHistoryProcedure, connect.NewUnaryHandler(ChatServiceAppendHistoryProcedure, svc.AppendHistory, opts...))
	mux.Handle(ChatServiceClearHistoryProcedure, connect.NewUnaryHandler(ChatServiceClearHistoryProcedure, svc.ClearHistory, opts...))
	return "/" + ChatServiceName + "/", mux
}

type ChatServiceClient struct {
	sendMessage   *connect.Client[SendMessageRequest, SendMessageResponse]
	getHistory    *connect.Client[GetHistoryRequest, GetHistoryResponse]
	appendHistory *connect.Client[AppendHistoryRequest, AppendHistoryResponse]
	clearHistory  *connect.Client[ClearHistoryRequest, ClearHistoryResponse]
}

func NewChatServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ChatServiceClient {
	opts = clientOptions(opts)
	return &ChatServiceClient{
		sendMessage:   connect.NewClient[SendMessageRequest, SendMessageResponse](httpClient, baseURL+ChatServiceSendMessageProcedure, opts...),
		getHistory:    connect.NewClient[GetHistoryRequest, GetHistoryResponse](httpClient, baseURL+ChatServiceGetHistoryProcedure, opts...),
		appendHistory: connect.NewClient[AppendHistoryRequest, AppendHistoryResponse](httpClient, baseURL+ChatServiceAppendHistoryProcedure, opts...),
		clearHistory:  connect.NewClient[ClearHistoryRequest, ClearHistoryResponse](httpClient, baseURL+ChatServiceClearHistoryProcedure, opts...),
	}
}

func (c *ChatServiceClient) SendMessage(ctx context.Context, req *connect.Request[SendMessageRequest]) (*connect.Response[SendMessageResponse], error) {
	return c.sendMessage.CallUnary(ctx, req)
}

func (c *ChatServiceClient) GetHistory(ctx context.Context, req *connect.Request[GetHistoryRequest]) (*connect.Response[GetHistoryResponse], error) {
	return c.getHistory.CallUnary(ctx, req)
}

func (c *ChatServiceClient) AppendHistory(ctx context.Context, req *connect.Request[AppendHistoryRequest]) (*connect.Response[AppendHistoryResponse], error) {
	return c.appendHistory.CallUnary(ctx, req)
}

func (c *ChatServiceClient) ClearHistory(ctx context.Context, req *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error) {
	return c.clearHistory.CallUnary(ctx, req)
}
