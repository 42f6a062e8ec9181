package api

import (
	"github.com/mmynk/patungan/internal/calculator"
	"github.com/mmynk/patungan/internal/models"
)

// Split is the computed breakdown of a bill.
type Split struct {
	Kind       models.BillKind        `json:"kind"`
	Summaries  []models.PersonSummary `json:"summaries"`
	Subtotal   float64                `json:"subtotal"`
	Service    float64                `json:"service"`
	Tax        float64                `json:"tax"`
	Total      float64                `json:"total"`
	PerPerson  float64                `json:"perPerson,omitempty"`
	Unassigned []models.LineItem      `json:"unassigned"`
}

// NewSplit converts a calculator breakdown into its wire form.
func NewSplit(b calculator.Breakdown) *Split {
	return &Split{
		Kind:       b.Kind,
		Summaries:  b.Summaries,
		Subtotal:   b.Subtotal,
		Service:    b.Service,
		Tax:        b.Tax,
		Total:      b.Total,
		PerPerson:  b.PerPerson,
		Unassigned: b.Unassigned,
	}
}

// BillRef names a bill of the calling identity.
type BillRef struct {
	Kind  models.BillKind `json:"kind"`
	Title string          `json:"title"`
}

type GetBillRequest struct {
	BillRef
}

type GetBillResponse struct {
	Bill *models.Bill `json:"bill"`
}

type SaveBillRequest struct {
	Bill *models.Bill `json:"bill"`
}

type SaveBillResponse struct {
	Bill *models.Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillRef
}

type DeleteBillResponse struct{}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []models.BillHeader `json:"bills"`
}

// CalculateSplitRequest carries a bill that does not need to be stored.
type CalculateSplitRequest struct {
	Bill *models.Bill `json:"bill"`
}

type CalculateSplitResponse struct {
	Split *Split `json:"split"`
}

type ShareBillRequest struct {
	BillRef
}

type ShareBillResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GetSharedBillRequest struct {
	Token string `json:"token"`
}

type GetSharedBillResponse struct {
	Bill  *models.Bill `json:"bill"`
	Split *Split       `json:"split"`
}

type ListNotesRequest struct{}

type ListNotesResponse struct {
	Notes []models.Note `json:"notes"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateNoteResponse struct {
	Note *models.Note `json:"note"`
}

type UpdateNoteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteResponse struct {
	Note *models.Note `json:"note"`
}

type DeleteNoteRequest struct {
	ID string `json:"id"`
}

type DeleteNoteResponse struct{}

// ReorderNotesRequest lists note IDs in their new order. Notes left out keep
// their relative order after the listed ones.
type ReorderNotesRequest struct {
	IDs []string `json:"ids"`
}

type ReorderNotesResponse struct {
	Notes []models.Note `json:"notes"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse holds the assistant's reply. When the assistant fails
// the reply is an apology and Failed is set.
type SendMessageResponse struct {
	Reply  models.ChatMessage `json:"reply"`
	Failed bool               `json:"failed,omitempty"`
}

type GetHistoryRequest struct{}

type GetHistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

type AppendHistoryRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

type AppendHistoryResponse struct{}

type ClearHistoryRequest struct{}

type ClearHistoryResponse struct{}

// RegisterRequest is empty: the identity comes from the request headers.
type RegisterRequest struct{}

type RegisterResponse struct {
	User *User `json:"user"`
}

type GetUserRequest struct{}

type GetUserResponse struct {
	User *User `json:"user"`
}

type DeleteDataRequest struct{}

type DeleteDataResponse struct{}

// User is the wire form of models.User.
type User struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
