package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/billing"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

// validTransitions is the work order lifecycle graph. Delivered and
// cancelled are terminal.
var validTransitions = map[domain.WorkOrderStatus][]domain.WorkOrderStatus{
	domain.StatusPending:    {domain.StatusApproved, domain.StatusCancelled},
	domain.StatusApproved:   {domain.StatusInProgress, domain.StatusCancelled},
	domain.StatusInProgress: {domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusCompleted:  {domain.StatusDelivered},
	domain.StatusDelivered:  {},
	domain.StatusCancelled:  {},
}

const (
	workOrderEntity     = "WorkOrder"
	workOrderItemEntity = "WorkOrderItem"
)

// WorkOrderService owns the work order lifecycle, its items and the
// financial rollups. Every mutation runs in a single transaction so the
// stored totals never drift from the item rows.
type WorkOrderService struct {
	db          *gorm.DB
	orderRepo   *repository.WorkOrderRepository
	itemRepo    *repository.WorkOrderItemRepository
	vehicleRepo *repository.VehicleRepository
	partRepo    *repository.PartRepository
	seqRepo     *repository.NumberSequenceRepository
	audit       *AuditService
	billingCfg  *config.BillingConfig
	logger      *zap.Logger
}

func NewWorkOrderService(
	db *gorm.DB,
	orderRepo *repository.WorkOrderRepository,
	itemRepo *repository.WorkOrderItemRepository,
	vehicleRepo *repository.VehicleRepository,
	partRepo *repository.PartRepository,
	seqRepo *repository.NumberSequenceRepository,
	audit *AuditService,
	billingCfg *config.BillingConfig,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		db:          db,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		vehicleRepo: vehicleRepo,
		partRepo:    partRepo,
		seqRepo:     seqRepo,
		audit:       audit,
		billingCfg:  billingCfg,
		logger:      logger,
	}
}

// Create opens a new work order in pending status. The number is
// allocated and the order persisted in one transaction, so two
// concurrent creates cannot share a number.
func (s *WorkOrderService) Create(ctx context.Context, req *domain.CreateWorkOrderRequest) (*domain.WorkOrder, error) {
	var created *domain.WorkOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		vehicle, err := s.vehicleRepo.WithTx(tx).GetByID(ctx, req.VehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return &StorageError{Op: "workorder.Create", Err: err}
		}

		number, err := s.seqRepo.WithTx(tx).NextWorkOrderNumber(ctx, s.billingCfg.WorkOrderPrefix, time.Now())
		if err != nil {
			return &StorageError{Op: "workorder.Create", Err: err}
		}

		order := &domain.WorkOrder{
			WorkOrderNumber:      number,
			VehicleID:            vehicle.ID,
			CustomerID:           vehicle.CustomerID,
			TechnicianID:         req.TechnicianID,
			ComplaintDescription: req.ComplaintDescription,
			KMIn:                 req.KMIn,
			FuelLevel:            req.FuelLevel,
			Status:               domain.StatusPending,
			VATRate:              decimal.NewFromFloat(s.billingCfg.DefaultVATRate),
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return &StorageError{Op: "workorder.Create", Err: err}
		}

		for i := range req.Items {
			if _, err := s.createItem(ctx, tx, order, &req.Items[i]); err != nil {
				return err
			}
		}
		if len(req.Items) > 0 {
			if err := s.recalculateTotals(ctx, tx, order.ID); err != nil {
				return err
			}
		}

		if err := s.audit.RecordCreate(ctx, tx, workOrderEntity, order.ID, order); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("work order created",
		zap.Uint("work_order_id", created.ID),
		zap.String("number", created.WorkOrderNumber))

	return s.GetByID(ctx, created.ID)
}

func (s *WorkOrderService) GetByID(ctx context.Context, id uint) (*domain.WorkOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, &StorageError{Op: "workorder.GetByID", Err: err}
	}
	return order, nil
}

func (s *WorkOrderService) GetByNumber(ctx context.Context, number string) (*domain.WorkOrder, error) {
	order, err := s.orderRepo.GetByNumber(ctx, strings.ToUpper(number))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, &StorageError{Op: "workorder.GetByNumber", Err: err}
	}
	return order, nil
}

func (s *WorkOrderService) List(ctx context.Context, page, pageSize int, filter repository.WorkOrderFilter) ([]domain.WorkOrder, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, 0, &StorageError{Op: "workorder.List", Err: err}
	}
	return orders, total, nil
}

// Update changes descriptive fields only. Status and financial fields
// have their own paths.
func (s *WorkOrderService) Update(ctx context.Context, id uint, req *domain.UpdateWorkOrderRequest) (*domain.WorkOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.Update", Err: err}
		}

		old := *order

		if req.TechnicianID != nil {
			order.TechnicianID = req.TechnicianID
		}
		if req.ComplaintDescription != nil {
			order.ComplaintDescription = *req.ComplaintDescription
		}
		if req.InternalNotes != nil {
			order.InternalNotes = *req.InternalNotes
		}
		if req.KMIn != nil {
			order.KMIn = req.KMIn
		}
		if req.KMOut != nil {
			order.KMOut = req.KMOut
		}
		if req.FuelLevel != nil {
			order.FuelLevel = *req.FuelLevel
		}

		if err := repo.Update(ctx, order); err != nil {
			return &StorageError{Op: "workorder.Update", Err: err}
		}

		return s.audit.RecordUpdate(ctx, tx, workOrderEntity, order.ID, &old, order)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the work order. The row and its audit trail remain.
func (s *WorkOrderService) Delete(ctx context.Context, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.Delete", Err: err}
		}

		if err := repo.SoftDelete(ctx, id); err != nil {
			return &StorageError{Op: "workorder.Delete", Err: err}
		}

		return s.audit.RecordDelete(ctx, tx, workOrderEntity, id, order)
	})
}

// AllowedTransitions reports which statuses the order can move to next
func (s *WorkOrderService) AllowedTransitions(ctx context.Context, id uint) (*domain.AllowedTransitionsResponse, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := validTransitions[order.Status]
	resp := &domain.AllowedTransitionsResponse{
		CurrentStatus:      order.Status,
		AllowedTransitions: make([]domain.WorkOrderStatus, len(allowed)),
	}
	copy(resp.AllowedTransitions, allowed)
	return resp, nil
}

// CanTransition reports whether the from -> to edge exists in the graph
func CanTransition(from, to domain.WorkOrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ChangeStatus moves the order along the lifecycle graph. Transitioning
// into completed stamps completed_at and depletes stock for part items,
// all inside the same transaction as the status write.
func (s *WorkOrderService) ChangeStatus(ctx context.Context, id uint, to domain.WorkOrderStatus) (*domain.WorkOrder, error) {
	if !to.IsValid() {
		return nil, ErrInvalidInput
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.ChangeStatus", Err: err}
		}

		from := order.Status
		if !CanTransition(from, to) {
			return &InvalidTransitionError{From: from, To: to}
		}

		values := map[string]interface{}{"status": to}
		if to == domain.StatusCompleted {
			now := time.Now().UTC()
			values["completed_at"] = &now

			if err := s.depleteStock(ctx, tx, order.Items); err != nil {
				return err
			}
		}

		if err := repo.UpdateColumns(ctx, id, values); err != nil {
			return &StorageError{Op: "workorder.ChangeStatus", Err: err}
		}

		oldState := map[string]interface{}{"status": from}
		newState := map[string]interface{}{"status": to}
		if err := s.audit.RecordUpdate(ctx, tx, workOrderEntity, id, oldState, newState); err != nil {
			return err
		}

		s.logger.Info("work order status changed",
			zap.Uint("work_order_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// depleteStock reduces inventory for each part-typed item by the whole
// units of its quantity. Stock never goes below zero; an over-consumed
// part is clamped rather than rejected, since the work is already done.
func (s *WorkOrderService) depleteStock(ctx context.Context, tx *gorm.DB, items []domain.WorkOrderItem) error {
	partRepo := s.partRepo.WithTx(tx)
	for _, item := range items {
		if item.Type != domain.ItemTypePart || item.PartID == nil {
			continue
		}

		part, err := partRepo.GetByID(ctx, *item.PartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return &StorageError{Op: "workorder.depleteStock", Err: err}
		}

		units := int(item.Quantity.IntPart())
		if units <= 0 {
			continue
		}

		newQty := part.StockQuantity - units
		if newQty < 0 {
			s.logger.Warn("stock depletion clamped at zero",
				zap.Uint("part_id", part.ID),
				zap.String("stock_code", part.StockCode),
				zap.Int("had", part.StockQuantity),
				zap.Int("consumed", units))
			newQty = 0
		}

		part.StockQuantity = newQty
		if err := partRepo.Update(ctx, part); err != nil {
			return &StorageError{Op: "workorder.depleteStock", Err: err}
		}
	}
	return nil
}

// AddItem appends a billable line to the order and refreshes the rollups
func (s *WorkOrderService) AddItem(ctx context.Context, orderID uint, req *domain.CreateWorkOrderItemRequest) (*domain.WorkOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.AddItem", Err: err}
		}
		if order.Status.IsTerminal() {
			return ErrOrderLocked
		}

		item, err := s.createItem(ctx, tx, order, req)
		if err != nil {
			return err
		}
		if err := s.recalculateTotals(ctx, tx, orderID); err != nil {
			return err
		}

		return s.audit.RecordCreate(ctx, tx, workOrderItemEntity, item.ID, item)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, orderID)
}

func (s *WorkOrderService) createItem(ctx context.Context, tx *gorm.DB, order *domain.WorkOrder, req *domain.CreateWorkOrderItemRequest) (*domain.WorkOrderItem, error) {
	if !req.Type.IsValid() {
		return nil, ErrInvalidInput
	}
	if req.Quantity.IsNegative() || req.UnitPrice.IsNegative() || req.Discount.IsNegative() {
		return nil, ErrInvalidInput
	}

	item := &domain.WorkOrderItem{
		WorkOrderID: order.ID,
		Type:        req.Type,
		PartID:      req.PartID,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Discount:    req.Discount,
		VATRate:     decimal.NewFromFloat(s.billingCfg.DefaultVATRate),
	}
	if req.VATRate != nil {
		item.VATRate = *req.VATRate
	}

	// Part lines resolve against inventory; an unpriced line takes the
	// part's sale price.
	if req.Type == domain.ItemTypePart && req.PartID != nil {
		part, err := s.partRepo.WithTx(tx).GetByID(ctx, *req.PartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPartNotFound
			}
			return nil, &StorageError{Op: "workorder.createItem", Err: err}
		}
		if item.UnitPrice.IsZero() {
			item.UnitPrice = part.SalePrice
		}
	}

	item.TotalPrice = billing.ItemTotal(item.Quantity, item.UnitPrice, item.Discount)

	if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
		return nil, &StorageError{Op: "workorder.createItem", Err: err}
	}
	return item, nil
}

// UpdateItem edits a line and refreshes the rollups
func (s *WorkOrderService) UpdateItem(ctx context.Context, orderID, itemID uint, req *domain.UpdateWorkOrderItemRequest) (*domain.WorkOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.UpdateItem", Err: err}
		}
		if order.Status.IsTerminal() {
			return ErrOrderLocked
		}

		itemRepo := s.itemRepo.WithTx(tx)
		item, err := itemRepo.GetByID(ctx, itemID)
		if err != nil || item.WorkOrderID != orderID {
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return &StorageError{Op: "workorder.UpdateItem", Err: err}
			}
			return ErrWorkOrderItemNotFound
		}

		old := *item

		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.Discount != nil {
			item.Discount = *req.Discount
		}
		if req.VATRate != nil {
			item.VATRate = *req.VATRate
		}
		if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() || item.Discount.IsNegative() {
			return ErrInvalidInput
		}
		item.TotalPrice = billing.ItemTotal(item.Quantity, item.UnitPrice, item.Discount)

		if err := itemRepo.Update(ctx, item); err != nil {
			return &StorageError{Op: "workorder.UpdateItem", Err: err}
		}
		if err := s.recalculateTotals(ctx, tx, orderID); err != nil {
			return err
		}

		return s.audit.RecordUpdate(ctx, tx, workOrderItemEntity, item.ID, &old, item)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, orderID)
}

// RemoveItem deletes a line and refreshes the rollups
func (s *WorkOrderService) RemoveItem(ctx context.Context, orderID, itemID uint) (*domain.WorkOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "workorder.RemoveItem", Err: err}
		}
		if order.Status.IsTerminal() {
			return ErrOrderLocked
		}

		itemRepo := s.itemRepo.WithTx(tx)
		item, err := itemRepo.GetByID(ctx, itemID)
		if err != nil || item.WorkOrderID != orderID {
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return &StorageError{Op: "workorder.RemoveItem", Err: err}
			}
			return ErrWorkOrderItemNotFound
		}

		if err := itemRepo.Delete(ctx, itemID); err != nil {
			return &StorageError{Op: "workorder.RemoveItem", Err: err}
		}
		if err := s.recalculateTotals(ctx, tx, orderID); err != nil {
			return err
		}

		return s.audit.RecordDelete(ctx, tx, workOrderItemEntity, itemID, item)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, orderID)
}

// recalculateTotals rebuilds the stored rollups from the item rows.
// It is idempotent: running it twice on unchanged items is a no-op.
func (s *WorkOrderService) recalculateTotals(ctx context.Context, tx *gorm.DB, orderID uint) error {
	items, err := s.itemRepo.WithTx(tx).ListByWorkOrder(ctx, orderID)
	if err != nil {
		return &StorageError{Op: "workorder.recalculateTotals", Err: err}
	}

	summary := billing.Summarize(items)
	values := map[string]interface{}{
		"labor_total":    summary.LaborTotal,
		"parts_total":    summary.PartsTotal,
		"discount_total": summary.DiscountTotal,
		"subtotal":       summary.Subtotal,
		"vat_total":      summary.VATTotal,
		"grand_total":    summary.GrandTotal,
	}
	if err := s.orderRepo.WithTx(tx).UpdateColumns(ctx, orderID, values); err != nil {
		return &StorageError{Op: "workorder.recalculateTotals", Err: err}
	}
	return nil
}
