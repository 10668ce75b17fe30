package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/example/clickmenu/pkg/models"
	"gorm.io/gorm"
)

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) models.StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *models.Store) error {
	err := r.db.WithContext(ctx).Create(store).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrStoreExists
	}
	return err
}

func (r *storeRepository) Find(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByLogin(ctx context.Context, login string) (*models.Store, error) {
	login = strings.TrimSpace(login)
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("store_id = ? OR LOWER(profile_email) = ?", login, strings.ToLower(login)).
		Order("store_id ASC").
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Save(ctx context.Context, store *models.Store) error {
	if _, err := r.Find(ctx, store.StoreID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.Store{}).
		Where("store_id = ?", store.StoreID).
		Select("name", "status", "authorized", "whatsapp", "profile_email", "logo_url", "parish", "passcode_hash", "updated_at").
		Updates(store).Error
}

func (r *storeRepository) List(ctx context.Context, f models.StoreFilter) ([]models.Store, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Store{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		cond, args := searchClause(q, "store_id", "name", "profile_email")
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := models.NewPage(f.Limit, f.Offset)
	var stores []models.Store
	err := query.Order("created_at DESC, store_id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

func (r *storeRepository) ListAll(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("created_at DESC, store_id ASC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}
