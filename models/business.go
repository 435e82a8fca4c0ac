package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
)

type Business struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	Country   string    `gorm:"size:100" json:"country"`
	City      string    `gorm:"size:100" json:"city"`
	Currency  string    `gorm:"size:10;default:TZS" json:"currency"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	VatRate   string    `gorm:"size:10" json:"vat_rate"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusiness struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	VatRate  string `json:"vat_rate"`
}

func (obj Business) StoreRedis() error {
	return config.SetRedisObject("Business:"+obj.ID.String(), &obj, 0)
}

func (obj Business) RemoveRedis() error {
	return config.RemoveRedisKey("Business:" + obj.ID.String())
}

func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {

	timezone := input.Timezone
	if timezone == "" {
		timezone = "Africa/Nairobi"
	}
	currency := input.Currency
	if currency == "" {
		currency = "TZS"
	}
	country := input.Country
	if country == "" {
		country = utils.CountryCode
	}

	business := Business{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Country:  country,
		City:     input.City,
		Currency: currency,
		Timezone: timezone,
		VatRate:  input.VatRate,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&business).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// each business starts with its two units
	units := []Unit{
		{BusinessId: business.ID.String(), Code: UnitCodeShop, Name: "Hardware Shop", IsActive: utils.NewTrue()},
		{BusinessId: business.ID.String(), Code: UnitCodeWorkshop, Name: "Workshop", IsActive: utils.NewTrue()},
	}
	if err := tx.WithContext(ctx).Create(&units).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func UpdateBusiness(ctx context.Context, id string, input *NewBusiness) (*Business, error) {

	db := config.GetDB()
	var before Business
	if err := db.WithContext(ctx).Where("id = ?", id).First(&before).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	update := before
	update.Name = input.Name
	update.Email = input.Email
	update.Phone = input.Phone
	update.Address = input.Address
	update.Country = input.Country
	update.City = input.City
	update.Currency = input.Currency
	update.Timezone = input.Timezone
	update.VatRate = input.VatRate

	if err := db.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"Name":     update.Name,
		"Email":    update.Email,
		"Phone":    update.Phone,
		"Address":  update.Address,
		"Country":  update.Country,
		"City":     update.City,
		"Currency": update.Currency,
		"Timezone": update.Timezone,
		"VatRate":  update.VatRate,
	}).Error; err != nil {
		return nil, err
	}

	// clear cache
	if err := update.RemoveRedis(); err != nil {
		return nil, err
	}
	return &update, nil
}

func GetBusinessById(ctx context.Context, id string) (*Business, error) {

	var result Business

	exists, err := config.GetRedisObject("Business:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		// db query
		err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func GetBusiness(ctx context.Context) (*Business, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return GetBusinessById(ctx, businessId)
}
