package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/application/ledger"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// UpsertPropertyRequest is the body of POST /properties and PUT /properties/:id
type UpsertPropertyRequest struct {
	OwnerName        string          `json:"owner_name" binding:"required,max=200"`
	OwnerPhone       string          `json:"owner_phone" binding:"max=50"`
	OwnerAddress     string          `json:"owner_address" binding:"max=500"`
	HouseNumber      string          `json:"house_number" binding:"max=50"`
	Structure        string          `json:"structure" binding:"required,max=100"`
	Use              string          `json:"use" binding:"required,max=100"`
	RoomCount        int             `json:"room_count" binding:"required,gte=1"`
	ZoneID           *uuid.UUID      `json:"zone_id"`
	OldBill          decimal.Decimal `json:"old_bill"`
	Arrears          decimal.Decimal `json:"arrears"`
	PreviousPayments decimal.Decimal `json:"previous_payments"`
}

func (r UpsertPropertyRequest) input() ledger.UpsertPropertyInput {
	return ledger.UpsertPropertyInput{
		OwnerName:        r.OwnerName,
		OwnerPhone:       r.OwnerPhone,
		OwnerAddress:     r.OwnerAddress,
		HouseNumber:      r.HouseNumber,
		Structure:        r.Structure,
		Use:              r.Use,
		RoomCount:        r.RoomCount,
		ZoneID:           r.ZoneID,
		OldBill:          r.OldBill,
		Arrears:          r.Arrears,
		PreviousPayments: r.PreviousPayments,
	}
}

// PreviewBillRequest is the body of POST /properties/preview-bill
type PreviewBillRequest struct {
	Structure        string          `json:"structure" binding:"required,max=100"`
	Use              string          `json:"use" binding:"required,max=100"`
	RoomCount        int             `json:"room_count" binding:"required,gte=1"`
	OldBill          decimal.Decimal `json:"old_bill"`
	Arrears          decimal.Decimal `json:"arrears"`
	PreviousPayments decimal.Decimal `json:"previous_payments"`
}

func (r PreviewBillRequest) input() ledger.PreviewBillInput {
	return ledger.PreviewBillInput{
		Structure:        r.Structure,
		Use:              r.Use,
		RoomCount:        r.RoomCount,
		OldBill:          r.OldBill,
		Arrears:          r.Arrears,
		PreviousPayments: r.PreviousPayments,
	}
}

// GenerateBillRequest is the body of POST /properties/:id/bills
type GenerateBillRequest struct {
	Year int `json:"year" binding:"required,gte=1900,lte=9999"`
}

// DeliveryRequest is the body of PUT /bills/:id/delivery
type DeliveryRequest struct {
	Status string `json:"status" binding:"required,delivery_status"`
	Notes  string `json:"notes" binding:"max=1000"`
}

// DeliveryResponse keeps the delivery fields at the top level of the body
type DeliveryResponse struct {
	Success  bool       `json:"success"`
	BillID   uuid.UUID  `json:"bill_id"`
	Status   string     `json:"status"`
	ServedAt *time.Time `json:"served_at"`
	ServedBy *string    `json:"served_by"`
	Notes    string     `json:"notes,omitempty"`
}

// DeletionResponse is the body of a successful DELETE /properties/:id
type DeletionResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    ledger.DeletionResult `json:"data"`
}

// BillResponse is the API view of a bill
type BillResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Year          int             `json:"year"`
	BillNumber    string          `json:"bill_number"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
	Status        string          `json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	ServedStatus  string          `json:"served_status"`
	ServedBy      *string         `json:"served_by"`
	ServedAt      *time.Time      `json:"served_at"`
}

func newBillResponse(b *billing.Bill) BillResponse {
	return BillResponse{
		ID:            b.ID,
		Type:          string(b.Ref.Kind),
		ReferenceID:   b.Ref.ID,
		Year:          b.Year,
		BillNumber:    b.BillNumber,
		AmountPayable: b.AmountPayable,
		Status:        string(b.Status),
		DueDate:       b.DueDate,
		GeneratedAt:   b.GeneratedAt,
		ServedStatus:  string(b.ServedStatus),
		ServedBy:      b.ServedBy,
		ServedAt:      b.ServedAt,
	}
}

// AuditLogQuery filters GET /properties/:id/audit-logs
type AuditLogQuery struct {
	Action   string `form:"action" binding:"max=50"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AuditLogResponse is the API view of an audit entry
type AuditLogResponse struct {
	ID        uuid.UUID       `json:"id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newAuditLogResponses(entries []audit.Entry) []AuditLogResponse {
	out := make([]AuditLogResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditLogResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Before:    e.Before,
			After:     e.After,
			Metadata:  e.Metadata,
			IPAddress: e.IPAddress,
			RequestID: e.RequestID,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}
