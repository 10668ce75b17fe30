package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/example/clickmenu/pkg/models"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) models.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateRequestID
	}
	return err
}

func (r *orderRepository) Find(ctx context.Context, storeID, requestID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND request_id = ?", storeID, requestID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByRequestID(ctx context.Context, requestID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, storeID, requestID string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("store_id = ? AND request_id = ? AND status = ?", storeID, requestID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// nothing matched: either the order is gone or its status moved on
	if _, err := r.Find(ctx, storeID, requestID); err != nil {
		return err
	}
	return models.ErrStatusConflict
}

func (r *orderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if f.StoreID != "" {
		query = query.Where("store_id = ?", f.StoreID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		query = query.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("created_at <= ?", f.To)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		cond, args := searchClause(q, "request_id", "store_id", "customer_name", "customer_phone", "customer_email")
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := models.NewPage(f.Limit, f.Offset)
	var orders []models.Order
	err := query.Order("created_at DESC, request_id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListAll(ctx context.Context, storeID string) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	var orders []models.Order
	if err := query.Order("created_at DESC, request_id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
