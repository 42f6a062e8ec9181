package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/assistant"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// ChatService implements the Connect ChatService. The conversation is stored
// per owner; the assistant only ever sees the conversation.
type ChatService struct {
	store     storage.ChatStore
	assistant assistant.Assistant
}

var _ api.ChatServiceHandler = (*ChatService)(nil)

func NewChatService(store storage.ChatStore, a assistant.Assistant) *ChatService {
	if a == nil {
		a = assistant.Unconfigured{}
	}
	return &ChatService{store: store, assistant: a}
}

// SendMessage records the user's message and the assistant's reply. When the
// assistant fails the reply is an apology, recorded like any other reply.
func (s *ChatService) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Msg.Message)
	if text == "" {
		return nil, invalidArgument("message is required")
	}

	history, err := s.store.ListChat(ctx, owner)
	if err != nil {
		return nil, storeError("load chat", err)
	}

	userMsg := models.ChatMessage{Role: models.RoleUser, Content: text, CreatedAt: time.Now().Unix()}
	transcript := append(history, userMsg)

	failed := false
	replyText, err := s.assistant.Reply(ctx, transcript)
	if err != nil {
		if errors.Is(err, assistant.ErrNotConfigured) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		slog.Warn("Assistant reply failed", "owner", owner, "error", err)
		replyText, failed = assistant.Apology, true
	}

	reply := models.ChatMessage{Role: models.RoleModel, Content: replyText, CreatedAt: time.Now().Unix()}
	if err := s.store.AppendChat(ctx, owner, userMsg, reply); err != nil {
		return nil, storeError("save chat", err)
	}
	return connect.NewResponse(&api.SendMessageResponse{Reply: reply, Failed: failed}), nil
}

func (s *ChatService) GetHistory(ctx context.Context, req *connect.Request[api.GetHistoryRequest]) (*connect.Response[api.GetHistoryResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListChat(ctx, owner)
	if err != nil {
		return nil, storeError("load chat", err)
	}
	return connect.NewResponse(&api.GetHistoryResponse{Messages: msgs}), nil
}

// AppendHistory stores messages produced elsewhere, such as a conversation
// kept while offline.
func (s *ChatService) AppendHistory(ctx context.Context, req *connect.Request[api.AppendHistoryRequest]) (*connect.Response[api.AppendHistoryResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range req.Msg.Messages {
		if m.Role != models.RoleUser && m.Role != models.RoleModel {
			return nil, invalidArgument("unknown role %q", m.Role)
		}
	}
	if err := s.store.AppendChat(ctx, owner, req.Msg.Messages...); err != nil {
		return nil, storeError("save chat", err)
	}
	return connect.NewResponse(&api.AppendHistoryResponse{}), nil
}

func (s *ChatService) ClearHistory(ctx context.Context, req *connect.Request[api.ClearHistoryRequest]) (*connect.Response[api.ClearHistoryResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearChat(ctx, owner); err != nil {
		return nil, storeError("clear chat", err)
	}
	return connect.NewResponse(&api.ClearHistoryResponse{}), nil
}
