package groups

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type enabledGroup struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	EnabledAt time.Time `gorm:"index"`
	EnabledBy string
}

func (enabledGroup) TableName() string {
	return "enabled_groups"
}

// Registry kept in a SQL database (sqlite or postgres) via gorm.
type GormRegistry struct {
	db *gorm.DB
}

var _ Registry = (*GormRegistry)(nil)

// Runs schema migration for the registry table.
func NewGormRegistry(db *gorm.DB) (*GormRegistry, error) {
	if err := db.AutoMigrate(&enabledGroup{}); err != nil {
		return nil, err
	}
	return &GormRegistry{db: db}, nil
}

func (r *GormRegistry) Enable(ctx context.Context, id, name, enabledBy string) (bool, error) {
	if name == "" {
		name = unknownGroupName
	}
	row := enabledGroup{ID: id, Name: name, EnabledAt: time.Now().UTC(), EnabledBy: enabledBy}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRegistry) Disable(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&enabledGroup{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRegistry) IsEnabled(ctx context.Context, id string) (bool, error) {
	var row enabledGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormRegistry) List(ctx context.Context) ([]Group, error) {
	var rows []enabledGroup
	if err := r.db.WithContext(ctx).Order("enabled_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, Group{ID: row.ID, Name: row.Name, EnabledAt: row.EnabledAt, EnabledBy: row.EnabledBy})
	}
	return out, nil
}

func (r *GormRegistry) Rename(ctx context.Context, id, name string) error {
	res := r.db.WithContext(ctx).Model(&enabledGroup{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
