package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// GormOrderRepository implements dispatch.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists an order and its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *dispatch.Order) error {
	db := conn(ctx, r.db)

	model := &OrderModel{ID: order.ID(), ClientRef: order.ClientRef(), CreatedAt: order.CreatedAt()}
	if err := db.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	lines := order.Lines()
	rows := make([]OrderLineModel, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, OrderLineModel{
			ID:        line.ID(),
			OrderID:   order.ID(),
			Position:  i,
			ProductID: line.ProductID(),
			Target:    quantitiesToJSON(line.Target()),
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create order lines: %w", err)
	}
	return nil
}

// FindByID retrieves an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*dispatch.Order, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindForUpdate retrieves an order and locks its row
func (r *GormOrderRepository) FindForUpdate(ctx context.Context, id string) (*dispatch.Order, error) {
	return r.find(forUpdate(conn(ctx, r.db)), id)
}

func (r *GormOrderRepository) find(db *gorm.DB, id string) (*dispatch.Order, error) {
	var model OrderModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("order", id)
		}
		return nil, fmt.Errorf("failed to find order: %w", result.Error)
	}

	orders, err := r.hydrate(db.Session(&gorm.Session{NewDB: true}), []OrderModel{model})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// FindLine retrieves a single order line
func (r *GormOrderRepository) FindLine(ctx context.Context, lineID string) (*dispatch.OrderLine, error) {
	return r.findLine(conn(ctx, r.db), lineID)
}

// FindLineForUpdate retrieves a single order line and locks its row
func (r *GormOrderRepository) FindLineForUpdate(ctx context.Context, lineID string) (*dispatch.OrderLine, error) {
	return r.findLine(forUpdate(conn(ctx, r.db)), lineID)
}

func (r *GormOrderRepository) findLine(db *gorm.DB, lineID string) (*dispatch.OrderLine, error) {
	var model OrderLineModel
	result := db.Where("id = ?", lineID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("order line", lineID)
		}
		return nil, fmt.Errorf("failed to find order line: %w", result.Error)
	}
	return modelToOrderLine(&model)
}

// List retrieves the most recent orders
func (r *GormOrderRepository) List(ctx context.Context, limit int) ([]*dispatch.Order, error) {
	db := conn(ctx, r.db)

	query := db.Order("created_at DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return r.hydrate(db, models)
}

func (r *GormOrderRepository) hydrate(db *gorm.DB, models []OrderModel) ([]*dispatch.Order, error) {
	if len(models) == 0 {
		return []*dispatch.Order{}, nil
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	var rows []OrderLineModel
	if err := db.Where("order_id IN ?", ids).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	linesByOrder := make(map[string][]*dispatch.OrderLine)
	for i := range rows {
		line, err := modelToOrderLine(&rows[i])
		if err != nil {
			return nil, err
		}
		linesByOrder[rows[i].OrderID] = append(linesByOrder[rows[i].OrderID], line)
	}

	orders := make([]*dispatch.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, dispatch.ReconstructOrder(m.ID, m.ClientRef, linesByOrder[m.ID], m.CreatedAt))
	}
	return orders, nil
}

func modelToOrderLine(model *OrderLineModel) (*dispatch.OrderLine, error) {
	target, err := requiredQuantities(model.Target)
	if err != nil {
		return nil, err
	}
	return dispatch.ReconstructOrderLine(model.ID, model.OrderID, model.ProductID, target), nil
}
