package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

// DailyCashClose locks one unit's day. After closing, no same-day postings
// are accepted for that unit.
type DailyCashClose struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null;uniqueIndex:uniq_unit_day" json:"business_id"`
	UnitId        int             `gorm:"not null;uniqueIndex:uniq_unit_day" json:"unit_id"`
	CloseDate     time.Time       `gorm:"not null;uniqueIndex:uniq_unit_day" json:"close_date"`
	CashIn        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_in"`
	CashOut       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_out"`
	ExpectedFloat decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"expected_float"`
	CountedFloat  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"counted_float"`
	Variance      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"variance"`
	Notes         string          `gorm:"type:text" json:"notes"`
	ClosedBy      int             `gorm:"index" json:"closed_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewDailyCashClose struct {
	CloseDate    *MyDateString   `json:"close_date"`
	CountedFloat decimal.Decimal `json:"counted_float"`
	Notes        string          `json:"notes"`
}

// validateDayOpen blocks postings into a unit's already-closed day.
// unitId zero means the posting belongs to no specific unit and passes.
func validateDayOpen(ctx context.Context, businessId string, unitId int, date time.Time) error {
	if unitId == 0 {
		return nil
	}

	business, err := GetBusinessById(ctx, businessId)
	if err != nil {
		return err
	}
	day, err := utils.ConvertToDate(date, business.Timezone)
	if err != nil {
		return err
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&DailyCashClose{}).
		Where("business_id = ? AND unit_id = ? AND close_date = ?", businessId, unitId, day).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("day has been closed for this unit")
	}
	return nil
}

// CloseUnitDay sums the unit's cash movement for the day and locks it.
func CloseUnitDay(ctx context.Context, unitCode UnitCode, input *NewDailyCashClose) (*DailyCashClose, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	unit, err := GetUnitByCode(ctx, unitCode)
	if err != nil {
		return nil, err
	}

	business, err := GetBusinessById(ctx, businessId)
	if err != nil {
		return nil, err
	}

	closeDate := time.Now()
	if input.CloseDate != nil {
		closeDate = time.Time(*input.CloseDate)
	}
	day, err := utils.ConvertToDate(closeDate, business.Timezone)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := utils.GetDayRange(day)

	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&DailyCashClose{}).
		Where("business_id = ? AND unit_id = ? AND close_date = ?", businessId, unit.ID, day).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("day already closed for this unit")
	}

	// cash in: positive cash payments of the day
	cashIn, err := utils.SumColumn(
		db.WithContext(ctx).Model(&Payment{}).
			Where("business_id = ? AND unit_id = ? AND method = ? AND amount > 0 AND payment_date BETWEEN ? AND ?",
				businessId, unit.ID, PaymentMethodCash, dayStart, dayEnd),
		"amount")
	if err != nil {
		return nil, err
	}

	// cash out: refund reversals plus the unit's expenses
	refundsOut, err := utils.SumColumn(
		db.WithContext(ctx).Model(&Payment{}).
			Where("business_id = ? AND unit_id = ? AND amount < 0 AND payment_date BETWEEN ? AND ?",
				businessId, unit.ID, dayStart, dayEnd),
		"amount")
	if err != nil {
		return nil, err
	}
	expensesOut, err := utils.SumColumn(
		db.WithContext(ctx).Model(&Expense{}).
			Where("business_id = ? AND unit_id = ? AND expense_date BETWEEN ? AND ?",
				businessId, unit.ID, dayStart, dayEnd),
		"amount")
	if err != nil {
		return nil, err
	}
	cashOut := refundsOut.Neg().Add(expensesOut)

	expected := cashIn.Sub(cashOut)
	userId, _ := utils.GetUserIdFromContext(ctx)

	close := DailyCashClose{
		BusinessId:    businessId,
		UnitId:        unit.ID,
		CloseDate:     day,
		CashIn:        cashIn,
		CashOut:       cashOut,
		ExpectedFloat: expected,
		CountedFloat:  input.CountedFloat,
		Variance:      input.CountedFloat.Sub(expected),
		Notes:         input.Notes,
		ClosedBy:      userId,
	}

	if err := db.WithContext(ctx).Create(&close).Error; err != nil {
		return nil, fmt.Errorf("could not close day: %w", err)
	}
	return &close, nil
}

func ListDailyCashCloses(ctx context.Context, unitId *int, fromDate *MyDateString, toDate *MyDateString) ([]*DailyCashClose, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

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

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if unitId != nil && *unitId > 0 {
		dbCtx = dbCtx.Where("unit_id = ?", *unitId)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("close_date BETWEEN ? AND ?", fromDate, toDate)
	}

	var results []*DailyCashClose
	if err := dbCtx.Order("close_date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
