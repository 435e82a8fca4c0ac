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

type SalesReportChart struct {
	Dates     []string          `json:"dates"`
	Sales     []decimal.Decimal `json:"sales"`
	Expenses  []decimal.Decimal `json:"expenses"`
	Discounts []decimal.Decimal `json:"discounts"`
	Refunds   []decimal.Decimal `json:"refunds"`
	Loans     []decimal.Decimal `json:"loans"`
}

type SalesReportResponse struct {
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	TotalSales     decimal.Decimal  `json:"total_sales"`
	SalesCount     int64            `json:"sales_count"`
	TotalExpenses  decimal.Decimal  `json:"total_expenses"`
	TotalDiscounts decimal.Decimal  `json:"total_discounts"`
	TotalRefunds   decimal.Decimal  `json:"total_refunds"`
	TotalLoans     decimal.Decimal  `json:"total_loans"`
	GrossProfit    decimal.Decimal  `json:"gross_profit"`
	Profit         decimal.Decimal  `json:"profit"`
	Chart          SalesReportChart `json:"chart"`
}

func reportDateRange(business *models.Business, fromDate *models.MyDateString, toDate *models.MyDateString) (time.Time, time.Time, error) {
	today, err := utils.ConvertToDate(time.Now(), business.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end := today, today
	if fromDate != nil {
		start, err = utils.ConvertToDate(time.Time(*fromDate), business.Timezone)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if toDate == nil {
			end = start
		}
	}
	if toDate != nil {
		end, err = utils.ConvertToDate(time.Time(*toDate), business.Timezone)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if fromDate == nil {
			start = end
		}
	}
	return start, end, nil
}

// grossProfitBetween sums the sell/buy margin on items of confirmed sales in
// the window. Refunded sales are already out of scope, so their margin simply
// drops out rather than going negative.
func grossProfitBetween(ctx context.Context, businessId string, dayStart time.Time, dayEnd time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&models.SaleItem{}).
		Joins("JOIN sales ON sales.id = sale_items.sale_id AND sales.business_id = sale_items.business_id").
		Joins("JOIN products ON products.id = sale_items.product_id AND products.business_id = sale_items.business_id").
		Where("sale_items.business_id = ? AND sales.status = ? AND sales.sale_date BETWEEN ? AND ?",
			businessId, models.SaleStatusConfirmed, dayStart, dayEnd)
	return utils.SumColumn(q, "(products.selling_price - products.buying_price) * sale_items.quantity")
}

// GetSalesReport aggregates a date window into collected sales, expense,
// discount, refund, loan, and profit totals plus a per-day chart series.
func GetSalesReport(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString) (*SalesReportResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	start, end, err := reportDateRange(business, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	rangeStart, _ := utils.GetDayRange(start)
	_, rangeEnd := utils.GetDayRange(end)

	db := config.GetDB()

	salesScope := func(from time.Time, to time.Time) *gorm.DB {
		return db.WithContext(ctx).Model(&models.Sale{}).
			Where("business_id = ? AND status <> ? AND sale_date BETWEEN ? AND ?",
				businessId, models.SaleStatusRefunded, from, to)
	}
	loansScope := func(from time.Time, to time.Time) *gorm.DB {
		return salesScope(from, to).Where("is_loan = ?", true)
	}
	expensesScope := func(from time.Time, to time.Time) *gorm.DB {
		return db.WithContext(ctx).Model(&models.Expense{}).
			Where("business_id = ? AND expense_date BETWEEN ? AND ?", businessId, from, to)
	}
	refundsScope := func(from time.Time, to time.Time) *gorm.DB {
		return db.WithContext(ctx).Model(&models.Refund{}).
			Where("business_id = ? AND created_at BETWEEN ? AND ?", businessId, from, to)
	}

	totalSales, err := utils.SumColumn(salesScope(rangeStart, rangeEnd), "paid_amount")
	if err != nil {
		return nil, err
	}
	totalDiscounts, err := utils.SumColumn(salesScope(rangeStart, rangeEnd), "discount_amount")
	if err != nil {
		return nil, err
	}
	totalExpenses, err := utils.SumColumn(expensesScope(rangeStart, rangeEnd), "amount")
	if err != nil {
		return nil, err
	}
	totalRefunds, err := utils.SumColumn(refundsScope(rangeStart, rangeEnd), "amount")
	if err != nil {
		return nil, err
	}
	totalLoans, err := utils.SumColumn(loansScope(rangeStart, rangeEnd), "final_amount - paid_amount")
	if err != nil {
		return nil, err
	}
	var salesCount int64
	if err := salesScope(rangeStart, rangeEnd).Count(&salesCount).Error; err != nil {
		return nil, err
	}

	grossProfit, err := grossProfitBetween(ctx, businessId, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	profit := grossProfit.Sub(totalDiscounts).Sub(totalExpenses).Sub(totalLoans)

	chart := SalesReportChart{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayStart, dayEnd := utils.GetDayRange(day)
		chart.Dates = append(chart.Dates, day.Format("2006-01-02"))

		daySales, err := utils.SumColumn(salesScope(dayStart, dayEnd), "paid_amount")
		if err != nil {
			return nil, err
		}
		dayDiscount, err := utils.SumColumn(salesScope(dayStart, dayEnd), "discount_amount")
		if err != nil {
			return nil, err
		}
		dayRefunds, err := utils.SumColumn(refundsScope(dayStart, dayEnd), "amount")
		if err != nil {
			return nil, err
		}
		dayExpenses, err := utils.SumColumn(expensesScope(dayStart, dayEnd), "amount")
		if err != nil {
			return nil, err
		}
		dayLoans, err := utils.SumColumn(loansScope(dayStart, dayEnd), "final_amount - paid_amount")
		if err != nil {
			return nil, err
		}

		chart.Sales = append(chart.Sales, daySales.Sub(dayRefunds))
		chart.Discounts = append(chart.Discounts, dayDiscount)
		chart.Refunds = append(chart.Refunds, dayRefunds)
		chart.Expenses = append(chart.Expenses, dayExpenses)
		chart.Loans = append(chart.Loans, dayLoans)
	}

	return &SalesReportResponse{
		StartDate:      start.Format("2006-01-02"),
		EndDate:        end.Format("2006-01-02"),
		TotalSales:     totalSales,
		SalesCount:     salesCount,
		TotalExpenses:  totalExpenses,
		TotalDiscounts: totalDiscounts,
		TotalRefunds:   totalRefunds,
		TotalLoans:     totalLoans,
		GrossProfit:    grossProfit,
		Profit:         profit,
		Chart:          chart,
	}, nil
}
