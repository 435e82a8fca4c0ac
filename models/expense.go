package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	UnitId      int             `gorm:"index;not null" json:"unit_id"`
	Category    ExpenseCategory `gorm:"size:20;not null;default:misc" json:"category"`
	ExpenseDate time.Time       `gorm:"not null" json:"expense_date" binding:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	Reference   string          `gorm:"size:255" json:"reference"`
	UserId      int             `gorm:"index" json:"user_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	UnitId      int             `json:"unit_id"`
	Category    ExpenseCategory `json:"category"`
	ExpenseDate time.Time       `json:"expense_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

type ExpensesEdge Edge[Expense]

type ExpensesConnection struct {
	PageInfo *PageInfo       `json:"pageInfo"`
	Edges    []*ExpensesEdge `json:"edges"`
}

func (obj Expense) GetId() int {
	return obj.ID
}

func (obj Expense) GetCursor() string {
	return obj.ExpenseDate.String()
}

// validate input for both create & update. (id = 0 for create)
func (input *NewExpense) validate(ctx context.Context, businessId string, _ int) error {

	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if input.Category != "" && !input.Category.Valid() {
		return errors.New("invalid expense category")
	}
	if input.UnitId > 0 {
		if err := utils.ValidateResourceId[Unit](ctx, businessId, input.UnitId); err != nil {
			return errors.New("unit not found")
		}
	}
	// a closed day takes no more postings
	return validateDayOpen(ctx, businessId, input.UnitId, input.ExpenseDate)
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = ExpenseCategoryMisc
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	expense := Expense{
		BusinessId:  businessId,
		UnitId:      input.UnitId,
		Category:    category,
		ExpenseDate: input.ExpenseDate,
		Amount:      input.Amount,
		Description: input.Description,
		Reference:   input.Reference,
		UserId:      userId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func UpdateExpense(ctx context.Context, id int, input *NewExpense) (*Expense, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	before, err := utils.FetchModel[Expense](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}
	// the original posting date must still be open too
	if err := validateDayOpen(ctx, businessId, before.UnitId, before.ExpenseDate); err != nil {
		return nil, err
	}

	update := Expense{ID: id, BusinessId: businessId}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&update).Updates(map[string]interface{}{
		"UnitId":      input.UnitId,
		"Category":    input.Category,
		"ExpenseDate": input.ExpenseDate,
		"Amount":      input.Amount,
		"Description": input.Description,
		"Reference":   input.Reference,
	}).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}

func DeleteExpense(ctx context.Context, id int) (*Expense, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Expense](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := validateDayOpen(ctx, businessId, result.UnitId, result.ExpenseDate); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Expense](ctx, businessId, id)
}

func PaginateExpense(ctx context.Context, limit *int, after *string, unitId *int, category *ExpenseCategory, fromDate *MyDateString, toDate *MyDateString) (*ExpensesConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	business, err := GetBusiness(ctx)
	if err != nil {
		return nil, errors.New("business id is required")
	}
	if err := fromDate.StartOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}

	if unitId != nil && *unitId > 0 {
		dbCtx.Where("unit_id = ?", *unitId)
	}
	if category != nil && *category != "" {
		dbCtx.Where("category = ?", *category)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("expense_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Expense](dbCtx, *limit, after, "expense_date", "<")
	if err != nil {
		return nil, err
	}
	var expensesConnection ExpensesConnection
	expensesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		expensesEdge := ExpensesEdge(edge)
		expensesConnection.Edges = append(expensesConnection.Edges, &expensesEdge)
	}

	return &expensesConnection, err
}
