package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
)

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	BusinessId  string    `gorm:"index;not null" json:"business_id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AllCategory struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (obj Category) GetId() int {
	return obj.ID
}

func (obj Category) GetBusinessId() string {
	return obj.BusinessId
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCategory) validate(ctx context.Context, businessId string, id int) error {
	if err := utils.ValidateUnique[Category](ctx, businessId, "name", input.Name, id); err != nil {
		return errors.New("duplicate category name")
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	category := Category{
		BusinessId:  businessId,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	if err := category.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if _, err := utils.FetchModel[Category](ctx, businessId, id); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	update := Category{ID: id, BusinessId: businessId}
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(update); err != nil {
		return nil, err
	}
	return &update, nil
}

func DeleteCategory(ctx context.Context, id int) (*Category, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Category](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// block when products still reference it
	count, err := utils.ResourceCountWhere[Product](ctx, businessId, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("category has products and cannot be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return GetResource[Category](ctx, id)
}

func ListAllCategories(ctx context.Context) ([]*AllCategory, error) {
	return ListAllResource[Category, AllCategory](ctx, "name")
}

func ToggleActiveCategory(ctx context.Context, businessId string, id int, isActive bool) (*Category, error) {
	return ToggleActiveModel[Category](ctx, businessId, id, isActive)
}
