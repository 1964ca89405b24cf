package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mibolsillo/internal/core"
)

var ErrEmptyID = errors.New("empty bill id")

// BillService covers the /bills endpoints.
type BillService struct {
	api API
}

func NewBillService(api API) *BillService {
	return &BillService{api: api}
}

func billPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyID
	}
	return "/bills/" + url.PathEscape(id), nil
}

// GetAll lists the user's bills. The result is never nil.
func (s *BillService) GetAll(ctx context.Context) ([]core.Bill, error) {
	var bills []core.Bill
	if err := s.api.Get(ctx, "/bills", nil, &bills); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if bills == nil {
		bills = []core.Bill{}
	}
	return bills, nil
}

// GetByID fetches one bill with its expenses.
func (s *BillService) GetByID(ctx context.Context, id string) (core.Bill, error) {
	path, err := billPath(id)
	if err != nil {
		return core.Bill{}, err
	}
	var bill core.Bill
	if err := s.api.Get(ctx, path, nil, &bill); err != nil {
		return core.Bill{}, fmt.Errorf("get bill %s: %w", id, err)
	}
	return bill, nil
}

// createResponse is the {bill, expenses} envelope POST /bills answers with.
type createResponse struct {
	Bill     *core.Bill     `json:"bill"`
	Expenses []core.Expense `json:"expenses"`
}

// Create posts a bill together with its expenses.
func (s *BillService) Create(ctx context.Context, req core.CreateBillRequest) (core.Bill, error) {
	if err := req.Validate(); err != nil {
		return core.Bill{}, err
	}
	var raw json.RawMessage
	if err := s.api.Post(ctx, "/bills", req, &raw); err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	return decodeCreated(raw)
}

func decodeCreated(raw json.RawMessage) (core.Bill, error) {
	if len(raw) == 0 {
		return core.Bill{}, nil
	}
	var env createResponse
	if err := json.Unmarshal(raw, &env); err == nil && env.Bill != nil {
		bill := *env.Bill
		if len(bill.Expenses) == 0 {
			bill.Expenses = env.Expenses
		}
		return bill, nil
	}
	var bill core.Bill
	if err := json.Unmarshal(raw, &bill); err != nil {
		return core.Bill{}, fmt.Errorf("decode created bill: %w", err)
	}
	return bill, nil
}

// Update replaces the bill-level fields of a bill.
func (s *BillService) Update(ctx context.Context, id string, req core.UpdateBillRequest) (core.Bill, error) {
	path, err := billPath(id)
	if err != nil {
		return core.Bill{}, err
	}
	var bill core.Bill
	if err := s.api.Put(ctx, path, req, &bill); err != nil {
		return core.Bill{}, fmt.Errorf("update bill %s: %w", id, err)
	}
	return bill, nil
}

// Delete removes a bill and its expenses.
func (s *BillService) Delete(ctx context.Context, id string) error {
	path, err := billPath(id)
	if err != nil {
		return err
	}
	if err := s.api.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	return nil
}
