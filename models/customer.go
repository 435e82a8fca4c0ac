package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone         string          `gorm:"size:20" json:"phone"`
	Email         string          `gorm:"size:255" json:"email"`
	Address       string          `gorm:"type:text" json:"address"`
	Type          CustomerType    `gorm:"size:20;not null;default:individual" json:"type"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	IsVip         *bool           `gorm:"not null;default:false" json:"is_vip"`
	IsBlacklisted *bool           `gorm:"not null;default:false" json:"is_blacklisted"`
	Notes         string          `gorm:"type:text" json:"notes"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name          string          `json:"name" binding:"required"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	Type          CustomerType    `json:"type"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	IsVip         *bool           `json:"is_vip"`
	IsBlacklisted *bool           `json:"is_blacklisted"`
	Notes         string          `json:"notes"`
}

type CustomersEdge Edge[Customer]

type CustomersConnection struct {
	PageInfo *PageInfo        `json:"pageInfo"`
	Edges    []*CustomersEdge `json:"edges"`
}

func (obj Customer) GetId() int {
	return obj.ID
}

func (obj Customer) GetCursor() string {
	return obj.CreatedAt.String()
}

func (obj Customer) GetBusinessId() string {
	return obj.BusinessId
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCustomer) validate(ctx context.Context, businessId string, id int) error {

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	if input.Type != "" && !input.Type.Valid() {
		return errors.New("invalid customer type")
	}
	if input.CreditLimit.IsNegative() {
		return errors.New("credit limit cannot be negative")
	}

	// unique phone per business
	if input.Phone != "" {
		count, err := utils.ResourceCountWhere[Customer](ctx, businessId, "phone = ? AND id != ?", input.Phone, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.New("duplicate customer phone")
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	customerType := input.Type
	if customerType == "" {
		customerType = CustomerTypeIndividual
	}
	if input.IsVip == nil {
		input.IsVip = utils.NewFalse()
	}
	if input.IsBlacklisted == nil {
		input.IsBlacklisted = utils.NewFalse()
	}

	customer := Customer{
		BusinessId:    businessId,
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Type:          customerType,
		CreditLimit:   input.CreditLimit,
		IsVip:         input.IsVip,
		IsBlacklisted: input.IsBlacklisted,
		Notes:         input.Notes,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	beforeUpdate, err := utils.FetchModel[Customer](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	if input.IsVip == nil {
		input.IsVip = beforeUpdate.IsVip
	}
	if input.IsBlacklisted == nil {
		input.IsBlacklisted = beforeUpdate.IsBlacklisted
	}

	update := Customer{
		ID:            id,
		BusinessId:    businessId,
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Type:          input.Type,
		CreditLimit:   input.CreditLimit,
		IsVip:         input.IsVip,
		IsBlacklisted: input.IsBlacklisted,
		Notes:         input.Notes,
	}

	db := config.GetDB()
	tx := db.Begin()

	err = tx.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"Name":          update.Name,
		"Phone":         update.Phone,
		"Email":         update.Email,
		"Address":       update.Address,
		"Type":          update.Type,
		"CreditLimit":   update.CreditLimit,
		"IsVip":         update.IsVip,
		"IsBlacklisted": update.IsBlacklisted,
		"Notes":         update.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RemoveRedisBoth(update); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &update, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Customer](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// a customer with sales history cannot be removed
	count, err := utils.ResourceCountWhere[Sale](ctx, businessId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("customer has sales and cannot be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return result, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return GetResource[Customer](ctx, id)
}

// outstanding loan balance across all of the customer's unpaid loan sales
func GetCustomerOutstanding(ctx context.Context, customerId int) (decimal.Decimal, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return decimal.Zero, errors.New("business id is required")
	}

	db := config.GetDB()
	q := db.WithContext(ctx).Model(&Sale{}).
		Where("business_id = ? AND customer_id = ? AND is_loan = ? AND status != ?",
			businessId, customerId, true, SaleStatusRefunded)
	return utils.SumColumn(q, "final_amount - paid_amount")
}

func PaginateCustomer(ctx context.Context, limit *int, after *string, name *string, phone *string, customerType *CustomerType, isBlacklisted *bool) (*CustomersConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if phone != nil && *phone != "" {
		dbCtx.Where("phone LIKE ?", "%"+*phone+"%")
	}
	if customerType != nil && *customerType != "" {
		dbCtx.Where("type = ?", *customerType)
	}
	if isBlacklisted != nil {
		dbCtx.Where("is_blacklisted = ?", *isBlacklisted)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Customer](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var customersConnection CustomersConnection
	customersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		customersEdge := CustomersEdge(edge)
		customersConnection.Edges = append(customersConnection.Edges, &customersEdge)
	}

	return &customersConnection, err
}

func ToggleActiveCustomer(ctx context.Context, businessId string, id int, isActive bool) (*Customer, error) {
	return ToggleActiveModel[Customer](ctx, businessId, id, isActive)
}
