package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

// JobType is a fixed-price repair offering, e.g. "puncture repair".
type JobType struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	FixedPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"fixed_price"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewJobType struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	FixedPrice  decimal.Decimal `json:"fixed_price" binding:"required"`
}

type AllJobType struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	FixedPrice decimal.Decimal `json:"fixed_price"`
	IsActive   *bool           `json:"is_active"`
}

func (obj JobType) GetId() int {
	return obj.ID
}

func (obj JobType) GetBusinessId() string {
	return obj.BusinessId
}

// validate input for both create & update. (id = 0 for create)
func (input *NewJobType) validate(ctx context.Context, businessId string, id int) error {
	if input.FixedPrice.IsNegative() {
		return errors.New("fixed price cannot be negative")
	}
	if err := utils.ValidateUnique[JobType](ctx, businessId, "name", input.Name, id); err != nil {
		return errors.New("duplicate job type name")
	}
	return nil
}

func CreateJobType(ctx context.Context, input *NewJobType) (*JobType, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	jobType := JobType{
		BusinessId:  businessId,
		Name:        input.Name,
		Description: input.Description,
		FixedPrice:  input.FixedPrice,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&jobType).Error; err != nil {
		return nil, err
	}
	if err := jobType.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &jobType, nil
}

func UpdateJobType(ctx context.Context, id int, input *NewJobType) (*JobType, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if _, err := utils.FetchModel[JobType](ctx, businessId, id); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	update := JobType{ID: id, BusinessId: businessId}
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
		"FixedPrice":  input.FixedPrice,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(update); err != nil {
		return nil, err
	}
	return &update, nil
}

func DeleteJobType(ctx context.Context, id int) (*JobType, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[JobType](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[RepairJob](ctx, businessId, "job_type_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("job type is in use and cannot be deleted")
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

func GetJobType(ctx context.Context, id int) (*JobType, error) {
	return GetResource[JobType](ctx, id)
}

func ListAllJobTypes(ctx context.Context) ([]*AllJobType, error) {
	return ListAllResource[JobType, AllJobType](ctx, "name")
}

func ToggleActiveJobType(ctx context.Context, businessId string, id int, isActive bool) (*JobType, error) {
	return ToggleActiveModel[JobType](ctx, businessId, id, isActive)
}
