package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/example/clickmenu/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var menuColumns = []string{"title", "description", "category", "price", "status", "featured", "image_urls", "updated_at"}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) models.MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Upsert(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns(menuColumns),
	}).Create(item).Error
}

func (r *menuRepository) Find(ctx context.Context, storeID, itemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND item_id = ?", storeID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) Save(ctx context.Context, item *models.MenuItem) error {
	if _, err := r.Find(ctx, item.StoreID, item.ItemID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("store_id = ? AND item_id = ?", item.StoreID, item.ItemID).
		Select(menuColumns).
		Updates(item).Error
}

func (r *menuRepository) List(ctx context.Context, f models.MenuFilter) ([]models.MenuItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if f.StoreID != "" {
		query = query.Where("store_id = ?", f.StoreID)
	}
	if f.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Featured != nil {
		query = query.Where("featured = ?", *f.Featured)
	}
	if f.MissingMedia {
		query = query.Where("image_urls IS NULL OR JSON_LENGTH(image_urls) = 0")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		cond, args := searchClause(q, "item_id", "store_id", "title", "category")
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := models.NewPage(f.Limit, f.Offset)
	var items []models.MenuItem
	err := query.Order("store_id ASC, item_id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *menuRepository) ListByStores(ctx context.Context, storeIDs []string) ([]models.MenuItem, error) {
	if len(storeIDs) == 0 {
		return []models.MenuItem{}, nil
	}
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("store_id IN ?", storeIDs).
		Order("store_id ASC, featured DESC, title ASC, item_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Order("store_id ASC, item_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
