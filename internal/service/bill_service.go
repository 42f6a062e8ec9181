package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/calculator"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// BillService implements the Connect BillService.
type BillService struct {
	store  storage.BillStore
	shares *share.Manager
}

var _ api.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService. shares may be nil, in which case
// share links are unavailable.
func NewBillService(store storage.BillStore, shares *share.Manager) *BillService {
	return &BillService{store: store, shares: shares}
}

func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	key, err := billKey(owner, req.Msg.Kind, req.Msg.Title)
	if err != nil {
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, key)
	if err != nil {
		return nil, storeError("get bill", err)
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: bill}), nil
}

func (s *BillService) SaveBill(ctx context.Context, req *connect.Request[api.SaveBillRequest]) (*connect.Response[api.SaveBillResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	bill := req.Msg.Bill
	if bill != nil {
		bill.Owner = owner
	}
	if err := validateBill(bill); err != nil {
		return nil, err
	}

	if err := s.store.SaveBill(ctx, bill); err != nil {
		return nil, storeError("save bill", err)
	}
	slog.Info("Bill saved", "owner", owner, "bill_kind", bill.Kind, "bill_title", bill.Title)
	return connect.NewResponse(&api.SaveBillResponse{Bill: bill}), nil
}

func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	key, err := billKey(owner, req.Msg.Kind, req.Msg.Title)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteBill(ctx, key); err != nil {
		return nil, storeError("delete bill", err)
	}
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	bills, err := s.store.ListBills(ctx, owner)
	if err != nil {
		return nil, storeError("list bills", err)
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: bills}), nil
}

// CalculateSplit computes the breakdown of a bill without storing it.
func (s *BillService) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	bill := req.Msg.Bill
	if bill != nil && bill.Title == "" {
		bill.Title = "untitled"
	}
	if err := validateBill(bill); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CalculateSplitResponse{
		Split: api.NewSplit(calculator.CalculateBill(bill)),
	}), nil
}

func (s *BillService) ShareBill(ctx context.Context, req *connect.Request[api.ShareBillRequest]) (*connect.Response[api.ShareBillResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	key, err := billKey(owner, req.Msg.Kind, req.Msg.Title)
	if err != nil {
		return nil, err
	}
	if s.shares == nil {
		return nil, connect.NewError(connect.CodeUnavailable, share.ErrNoSecret)
	}

	// Only stored bills can be shared.
	if _, err := s.store.GetBill(ctx, key); err != nil {
		return nil, storeError("get bill", err)
	}

	token, expires, err := s.shares.Issue(key)
	if err != nil {
		if errors.Is(err, share.ErrNoSecret) {
			return nil, connect.NewError(connect.CodeUnavailable, err)
		}
		slog.Error("ShareBill failed", "owner", owner, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.ShareBillResponse{Token: token, ExpiresAt: expires.Unix()}), nil
}

// GetSharedBill resolves a share token. It needs no identity.
func (s *BillService) GetSharedBill(ctx context.Context, req *connect.Request[api.GetSharedBillRequest]) (*connect.Response[api.GetSharedBillResponse], error) {
	if s.shares == nil {
		return nil, connect.NewError(connect.CodeUnavailable, share.ErrNoSecret)
	}
	key, err := s.shares.Verify(req.Msg.Token)
	if err != nil {
		if errors.Is(err, share.ErrNoSecret) {
			return nil, connect.NewError(connect.CodeUnavailable, err)
		}
		return nil, connect.NewError(connect.CodePermissionDenied, err)
	}

	bill, err := s.store.GetBill(ctx, key)
	if err != nil {
		return nil, storeError("get bill", err)
	}
	return connect.NewResponse(&api.GetSharedBillResponse{
		Bill:  bill,
		Split: api.NewSplit(calculator.CalculateBill(bill)),
	}), nil
}
