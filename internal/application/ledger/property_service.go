package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpsertPropertyInput carries the fields of a property create or update
type UpsertPropertyInput struct {
	OwnerName        string
	OwnerPhone       string
	OwnerAddress     string
	HouseNumber      string
	Structure        string
	Use              string
	RoomCount        int
	ZoneID           *uuid.UUID
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	PreviousPayments decimal.Decimal
}

func (in UpsertPropertyInput) attributes() property.Attributes {
	return property.Attributes{
		Owner: property.Owner{
			Name:    strings.TrimSpace(in.OwnerName),
			Phone:   strings.TrimSpace(in.OwnerPhone),
			Address: strings.TrimSpace(in.OwnerAddress),
		},
		HouseNumber:      strings.TrimSpace(in.HouseNumber),
		Structure:        in.Structure,
		Use:              in.Use,
		RoomCount:        in.RoomCount,
		ZoneID:           in.ZoneID,
		OldBill:          in.OldBill,
		Arrears:          in.Arrears,
		PreviousPayments: in.PreviousPayments,
	}
}

// PreviewBillInput carries the figures needed to preview a bill
type PreviewBillInput struct {
	Structure        string
	Use              string
	RoomCount        int
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	PreviousPayments decimal.Decimal
}

// BillPreview is a computed but unsaved bill
type BillPreview struct {
	FeePerRoom    decimal.Decimal `json:"fee_per_room"`
	CurrentBill   decimal.Decimal `json:"current_bill"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
}

// PropertyService handles property upserts and reads
type PropertyService struct {
	propertyRepo property.PropertyRepository
	resolver     *property.FeeScheduleResolver
	calculator   property.BillAmountCalculator
	auditor      *AuditRecorder
	metrics      *telemetry.LedgerMetrics
	logger       *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(
	propertyRepo property.PropertyRepository,
	resolver *property.FeeScheduleResolver,
	auditor *AuditRecorder,
	logger *zap.Logger,
) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		propertyRepo: propertyRepo,
		resolver:     resolver,
		auditor:      auditor,
		logger:       logger,
	}
}

// WithMetrics counts creates and updates on m
func (s *PropertyService) WithMetrics(m *telemetry.LedgerMetrics) *PropertyService {
	s.metrics = m
	return s
}

// PreviewBill resolves the fee and computes the bill figures without persisting anything
func (s *PropertyService) PreviewBill(ctx context.Context, in PreviewBillInput) (*BillPreview, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "preview_bill")
	defer span.End()

	fee, err := s.resolver.Resolve(ctx, in.Structure, in.Use)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount, err := s.calculator.Compute(property.BillInput{
		FeePerRoom:       fee,
		RoomCount:        in.RoomCount,
		OldBill:          in.OldBill,
		Arrears:          in.Arrears,
		PreviousPayments: in.PreviousPayments,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &BillPreview{
		FeePerRoom:    fee,
		CurrentBill:   amount.CurrentBill,
		AmountPayable: amount.AmountPayable,
	}, nil
}

// Create registers a new property with its derived bill figures
func (s *PropertyService) Create(ctx context.Context, in UpsertPropertyInput, actor string) (*property.Property, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrActorID, actor)

	if strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Actor is required")
	}

	attrs := in.attributes()
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	fee, err := s.resolver.Resolve(ctx, attrs.Structure, attrs.Use)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	prop, err := property.NewProperty(attrs, fee)
	if err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save property: %w", err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, prop.ID.String())
	s.metrics.RecordUpsert(ctx, "create")

	s.auditor.Record(ctx, s.auditor.build(actor, audit.ActionCreateProperty, prop.Ref(), nil, prop.Snapshot()))

	s.logger.Info("Property created",
		zap.String("property_id", prop.ID.String()),
		zap.String("actor_id", actor),
		zap.String("amount_payable", prop.AmountPayable.StringFixed(2)),
	)
	return prop, nil
}

// Update changes a property and re-derives its bill figures
func (s *PropertyService) Update(ctx context.Context, id uuid.UUID, in UpsertPropertyInput, actor string) (*property.Property, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "update")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, id.String(),
		telemetry.SpanAttrActorID, actor,
	)

	if strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Actor is required")
	}

	prop, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}
	before := prop.Snapshot()

	attrs := in.attributes()
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	fee, err := s.resolver.Resolve(ctx, attrs.Structure, attrs.Use)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := prop.Update(attrs, fee); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save property: %w", err)
	}

	s.metrics.RecordUpsert(ctx, "update")
	s.auditor.Record(ctx, s.auditor.build(actor, audit.ActionUpdateProperty, prop.Ref(), before, prop.Snapshot()))

	s.logger.Info("Property updated",
		zap.String("property_id", prop.ID.String()),
		zap.String("actor_id", actor),
		zap.String("amount_payable", prop.AmountPayable.StringFixed(2)),
	)
	return prop, nil
}

// Get returns the property with the given id
func (s *PropertyService) Get(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	prop, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}
	return prop, nil
}
