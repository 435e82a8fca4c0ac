package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
)

// Unit is one of the two operating halves of the business,
// the retail shop or the repair workshop.
type Unit struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Code       UnitCode  `gorm:"size:20;not null" json:"code"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Address    string    `gorm:"type:text" json:"address"`
	Phone      string    `gorm:"size:20" json:"phone"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type AllUnit struct {
	ID       int      `json:"id"`
	Code     UnitCode `json:"code"`
	Name     string   `json:"name"`
	IsActive *bool    `json:"is_active"`
}

func (obj Unit) GetBusinessId() string {
	return obj.BusinessId
}

func GetUnit(ctx context.Context, id int) (*Unit, error) {
	return GetResource[Unit](ctx, id)
}

func ListAllUnits(ctx context.Context) ([]*AllUnit, error) {
	return ListAllResource[Unit, AllUnit](ctx, "id")
}

// resolve a unit by its code, shop or workshop
func GetUnitByCode(ctx context.Context, code UnitCode) (*Unit, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !code.Valid() {
		return nil, errors.New("invalid unit code")
	}

	db := config.GetDB()
	var result Unit
	if err := db.WithContext(ctx).
		Where("business_id = ? AND code = ?", businessId, code).
		First(&result).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func ToggleActiveUnit(ctx context.Context, businessId string, id int, isActive bool) (*Unit, error) {
	return ToggleActiveModel[Unit](ctx, businessId, id, isActive)
}
