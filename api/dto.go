/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Ledger:
    LedgerDTO, CreateLedgerRequest, UpdateBudgetRequest

  Items:
    ItemDTO, ItemDraft, QueryResponse, PartitionDTO

  Summary:
    SummaryDTO

VALIDATION:
  Structural validation (parseable amounts and dates) is done during DTO
  conversion; business validation (empty name, negative amount) lives in
  the budget package.

SEE ALSO:
  - handlers.go: Uses these types
  - budget/types.go: Domain model
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LedgerDTO represents a ledger in API responses.
type LedgerDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalBudget string `json:"total_budget"`
	ItemCount   int    `json:"item_count,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateLedgerRequest is the request to create a ledger.
type CreateLedgerRequest struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	TotalBudget string      `json:"total_budget"`
	Items       []ItemDraft `json:"items,omitempty"`
}

// UpdateBudgetRequest reconfigures the total budget ceiling.
type UpdateBudgetRequest struct {
	TotalBudget string `json:"total_budget"`
}

// ItemDraft is the caller-supplied shape of a line item. The id is
// optional on create; the server assigns one when absent.
type ItemDraft struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Amount        string  `json:"amount"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	DueDate       *string `json:"due_date,omitempty"` // RFC 3339
	Vendor        string  `json:"vendor,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// ItemDTO represents a line item in API responses.
type ItemDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Amount        string  `json:"amount"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	DueDate       *string `json:"due_date,omitempty"`
	Vendor        string  `json:"vendor,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// SummaryDTO represents the maintained budget summary.
type SummaryDTO struct {
	TotalBudget            string `json:"total_budget"`
	TotalExpenses          string `json:"total_expenses"`
	TotalIncome            string `json:"total_income"`
	RemainingBudget        string `json:"remaining_budget"`
	LargestExpenseCategory string `json:"largest_expense_category"`
	LargestExpenseAmount   string `json:"largest_expense_amount"`
	UpcomingPayments       int    `json:"upcoming_payments"`
	OverduePayments        int    `json:"overdue_payments"`
}

// QueryResponse wraps a filtered item list.
type QueryResponse struct {
	Items []ItemDTO `json:"items"`
	Total int       `json:"total"` // items in the ledger before filtering
}

// PartitionDTO holds the two disjoint kind subsets of a filtered set.
type PartitionDTO struct {
	Expenses []ItemDTO `json:"expenses"`
	Income   []ItemDTO `json:"income"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toItemDTO(it budget.Item) ItemDTO {
	dto := ItemDTO{
		ID:            string(it.ID),
		Name:          it.Name,
		Category:      it.Category,
		Amount:        it.Amount.String(),
		Kind:          string(it.Kind),
		Status:        string(it.Status),
		Vendor:        it.Vendor,
		PaymentMethod: it.PaymentMethod,
		Notes:         it.Notes,
		CreatedAt:     it.CreatedAt.Format(time.RFC3339),
	}
	if it.DueDate != nil {
		due := it.DueDate.Format(time.RFC3339)
		dto.DueDate = &due
	}
	return dto
}

func toItemDTOs(items []budget.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos
}

func toSummaryDTO(s budget.Summary) SummaryDTO {
	return SummaryDTO{
		TotalBudget:            s.TotalBudget.String(),
		TotalExpenses:          s.TotalExpenses.String(),
		TotalIncome:            s.TotalIncome.String(),
		RemainingBudget:        s.RemainingBudget.String(),
		LargestExpenseCategory: s.LargestExpenseCategory,
		LargestExpenseAmount:   s.LargestExpenseAmount.String(),
		UpcomingPayments:       s.UpcomingPayments,
		OverduePayments:        s.OverduePayments,
	}
}

// fromDraft converts an ItemDraft to a domain Item. Amount and due date
// must parse; everything else is validated by the budget package.
func fromDraft(d ItemDraft) (budget.Item, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return budget.Item{}, fmt.Errorf("invalid amount %q: %w", d.Amount, err)
	}

	item := budget.Item{
		ID:            budget.ItemID(d.ID),
		Name:          d.Name,
		Category:      d.Category,
		Amount:        amount,
		Kind:          budget.Kind(d.Kind),
		Status:        budget.Status(d.Status),
		Vendor:        d.Vendor,
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
	}
	if d.DueDate != nil && *d.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *d.DueDate)
		if err != nil {
			return budget.Item{}, fmt.Errorf("invalid due_date %q: %w", *d.DueDate, err)
		}
		item.DueDate = &due
	}
	return item, nil
}

func totalsToJSON(totals map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(totals))
	for k, v := range totals {
		out[k] = v.String()
	}
	return out
}
