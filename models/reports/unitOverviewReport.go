package reports

import (
	"context"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UnitExpensesOverview struct {
	Count  int64            `json:"count"`
	Total  decimal.Decimal  `json:"total"`
	Recent []*models.Expense `json:"recent"`
}

type UnitLoansOverview struct {
	Count       int64           `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Recent      []*models.Sale  `json:"recent"`
}

type UnitStockOverview struct {
	Count  int64                `json:"count"`
	Recent []*models.StockEntry `json:"recent"`
}

type UnitRepairDebtsOverview struct {
	Count       int64           `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type UnitOverviewEntry struct {
	Unit           CashbookUnit             `json:"unit"`
	Expenses       UnitExpensesOverview     `json:"expenses"`
	Loans          UnitLoansOverview        `json:"loans"`
	StockMovements UnitStockOverview        `json:"stock_movements"`
	RepairDebts    *UnitRepairDebtsOverview `json:"repair_debts,omitempty"`
}

type UnitOverviewTotals struct {
	ExpensesCount    int64           `json:"expenses_count"`
	ExpensesTotal    decimal.Decimal `json:"expenses_total"`
	LoansCount       int64           `json:"loans_count"`
	LoansOutstanding decimal.Decimal `json:"loans_outstanding"`
}

type UnitOverviewResponse struct {
	Units  []*UnitOverviewEntry `json:"units"`
	Totals UnitOverviewTotals   `json:"totals"`
}

// GetUnitOverview builds the admin per-unit snapshot: month-to-date expenses,
// open loans, latest stock movement, and for the workshop its unpaid repair
// invoices.
func GetUnitOverview(ctx context.Context) (*UnitOverviewResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	location, err := time.LoadLocation(business.Timezone)
	if err != nil {
		location = time.UTC
	}
	now := time.Now().In(location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, location).UTC()

	db := config.GetDB()

	var units []*models.Unit
	if err := db.WithContext(ctx).Model(&models.Unit{}).
		Where("business_id = ?", businessId).
		Order("id").
		Find(&units).Error; err != nil {
		return nil, err
	}

	openLoanStatuses := []models.PaymentStatus{models.PaymentStatusNotPaid, models.PaymentStatusPartial}

	response := &UnitOverviewResponse{Totals: UnitOverviewTotals{
		ExpensesTotal:    decimal.Zero,
		LoansOutstanding: decimal.Zero,
	}}

	for _, unit := range units {
		entry := &UnitOverviewEntry{
			Unit: CashbookUnit{Id: unit.ID, Code: string(unit.Code), Name: unit.Name},
		}

		expensesScope := func() *gorm.DB {
			return db.WithContext(ctx).Model(&models.Expense{}).
				Where("business_id = ? AND unit_id = ? AND expense_date >= ?", businessId, unit.ID, monthStart)
		}
		if err := expensesScope().Count(&entry.Expenses.Count).Error; err != nil {
			return nil, err
		}
		entry.Expenses.Total, err = utils.SumColumn(expensesScope(), "amount")
		if err != nil {
			return nil, err
		}
		if err := expensesScope().Order("expense_date DESC").Limit(10).Find(&entry.Expenses.Recent).Error; err != nil {
			return nil, err
		}

		loansScope := func() *gorm.DB {
			return db.WithContext(ctx).Model(&models.Sale{}).
				Where("business_id = ? AND unit_id = ? AND is_loan = ? AND status <> ? AND payment_status IN ?",
					businessId, unit.ID, true, models.SaleStatusRefunded, openLoanStatuses)
		}
		if err := loansScope().Count(&entry.Loans.Count).Error; err != nil {
			return nil, err
		}
		var openLoans []*models.Sale
		if err := loansScope().Order("sale_date DESC").Find(&openLoans).Error; err != nil {
			return nil, err
		}
		entry.Loans.Outstanding = decimal.Zero
		for _, loan := range openLoans {
			entry.Loans.Outstanding = entry.Loans.Outstanding.Add(loan.Outstanding())
		}
		if len(openLoans) > 10 {
			entry.Loans.Recent = openLoans[:10]
		} else {
			entry.Loans.Recent = openLoans
		}

		stockScope := db.WithContext(ctx).Model(&models.StockEntry{}).
			Where("business_id = ? AND unit_id = ?", businessId, unit.ID)
		if err := stockScope.Count(&entry.StockMovements.Count).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).Model(&models.StockEntry{}).
			Where("business_id = ? AND unit_id = ?", businessId, unit.ID).
			Order("created_at DESC").Limit(15).
			Find(&entry.StockMovements.Recent).Error; err != nil {
			return nil, err
		}

		if unit.Code == models.UnitCodeWorkshop {
			debts := &UnitRepairDebtsOverview{Outstanding: decimal.Zero}
			var invoices []*models.RepairInvoice
			if err := db.WithContext(ctx).Model(&models.RepairInvoice{}).
				Joins("JOIN repair_jobs ON repair_jobs.id = repair_invoices.repair_job_id AND repair_jobs.business_id = repair_invoices.business_id").
				Where("repair_invoices.business_id = ? AND repair_jobs.unit_id = ? AND repair_invoices.payment_status IN ?",
					businessId, unit.ID,
					[]models.RepairInvoiceStatus{models.RepairInvoiceStatusUnpaid, models.RepairInvoiceStatusPartial}).
				Find(&invoices).Error; err != nil {
				return nil, err
			}
			debts.Count = int64(len(invoices))
			for _, inv := range invoices {
				debts.Outstanding = debts.Outstanding.Add(inv.Outstanding())
			}
			entry.RepairDebts = debts
		}

		response.Totals.ExpensesCount += entry.Expenses.Count
		response.Totals.ExpensesTotal = response.Totals.ExpensesTotal.Add(entry.Expenses.Total)
		response.Totals.LoansCount += entry.Loans.Count
		response.Totals.LoansOutstanding = response.Totals.LoansOutstanding.Add(entry.Loans.Outstanding)

		response.Units = append(response.Units, entry)
	}

	return response, nil
}
