package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/middleware"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

// storeError maps a storage failure to a Connect error.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeUnavailable, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("failed to %s", op))
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireOwner returns the caller's email.
func requireOwner(ctx context.Context) (string, error) {
	owner := middleware.Owner(ctx)
	if owner == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, middleware.ErrMissingIdentity)
	}
	return owner, nil
}

func billKey(owner string, kind models.BillKind, title string) (models.BillKey, error) {
	k, err := models.ParseBillKind(string(kind))
	if err != nil {
		return models.BillKey{}, invalidArgument("%v", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.BillKey{}, invalidArgument("title is required")
	}
	return models.BillKey{Owner: owner, Kind: k, Title: title}, nil
}

func validAmount(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

// validateBill checks a bill received from a client.
func validateBill(bill *models.Bill) error {
	if bill == nil {
		return invalidArgument("bill is required")
	}
	key, err := billKey(bill.Owner, bill.Kind, bill.Title)
	if err != nil {
		return err
	}
	bill.Kind, bill.Title = key.Kind, key.Title

	if !validAmount(bill.Total) {
		return invalidArgument("total must be a non-negative number")
	}
	for _, p := range bill.Participants {
		if p.ID == "" || strings.TrimSpace(p.Name) == "" {
			return invalidArgument("participants need an id and a name")
		}
	}
	for _, it := range bill.Items {
		if it.ID == "" || strings.TrimSpace(it.Name) == "" {
			return invalidArgument("items need an id and a name")
		}
		if !validAmount(it.Price) {
			return invalidArgument("price of %q must be a non-negative number", it.Name)
		}
	}
	for _, o := range []*float64{bill.Surcharge.ServiceOverride, bill.Surcharge.TaxOverride} {
		if o != nil && !validAmount(*o) {
			return invalidArgument("surcharge override must be a non-negative number")
		}
	}
	return nil
}
