package reports

import (
	"context"
	"time"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type ShortReportRow struct {
	Date          string          `json:"date"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Loans         decimal.Decimal `json:"loans"`
	Profit        decimal.Decimal `json:"profit"`
	SalesCount    int64           `json:"sales_count"`
}

type ShortReportTotals struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalLoans    decimal.Decimal `json:"total_loans"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	SalesCount    int64           `json:"sales_count"`
}

type ShortReportResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Report    []*ShortReportRow `json:"report"`
	Totals    ShortReportTotals `json:"totals"`
}

// GetShortReport condenses each day of the window into one profit line.
// Defaults to the current week when no dates are given.
func GetShortReport(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString) (*ShortReportResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	var start, end time.Time
	if fromDate == nil && toDate == nil {
		today, err := utils.ConvertToDate(time.Now(), business.Timezone)
		if err != nil {
			return nil, err
		}
		// Monday through Sunday of the current week
		offset := (int(today.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	} else {
		start, end, err = reportDateRange(business, fromDate, toDate)
		if err != nil {
			return nil, err
		}
	}

	sales, err := GetSalesReport(ctx,
		myDate(start), myDate(end))
	if err != nil {
		return nil, err
	}

	response := &ShortReportResponse{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Totals: ShortReportTotals{
			TotalSales:    decimal.Zero,
			TotalDiscount: decimal.Zero,
			TotalRefunds:  decimal.Zero,
			TotalExpenses: decimal.Zero,
			TotalLoans:    decimal.Zero,
			TotalProfit:   decimal.Zero,
		},
	}

	for i, date := range sales.Chart.Dates {
		day := start.AddDate(0, 0, i)
		dayStart, dayEnd := utils.GetDayRange(day)

		daySalesCount, err := countSales(ctx, businessId, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		grossProfit, err := grossProfitBetween(ctx, businessId, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		discount := sales.Chart.Discounts[i]
		expenses := sales.Chart.Expenses[i]
		loans := sales.Chart.Loans[i]
		refunds := sales.Chart.Refunds[i]
		collected := sales.Chart.Sales[i].Add(refunds)
		profit := grossProfit.Sub(discount).Sub(expenses).Sub(loans)

		if collected.IsZero() && daySalesCount == 0 && expenses.IsZero() && refunds.IsZero() {
			continue
		}

		response.Report = append(response.Report, &ShortReportRow{
			Date:          date,
			TotalSales:    collected,
			TotalDiscount: discount,
			TotalRefunds:  refunds,
			TotalExpenses: expenses,
			Loans:         loans,
			Profit:        profit,
			SalesCount:    daySalesCount,
		})

		response.Totals.TotalSales = response.Totals.TotalSales.Add(collected)
		response.Totals.TotalDiscount = response.Totals.TotalDiscount.Add(discount)
		response.Totals.TotalRefunds = response.Totals.TotalRefunds.Add(refunds)
		response.Totals.TotalExpenses = response.Totals.TotalExpenses.Add(expenses)
		response.Totals.TotalLoans = response.Totals.TotalLoans.Add(loans)
		response.Totals.TotalProfit = response.Totals.TotalProfit.Add(profit)
		response.Totals.SalesCount += daySalesCount
	}

	return response, nil
}

func countSales(ctx context.Context, businessId string, dayStart time.Time, dayEnd time.Time) (int64, error) {
	var count int64
	err := validSales(ctx, businessId, nil).
		Where("sale_date BETWEEN ? AND ?", dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

func myDate(t time.Time) *models.MyDateString {
	d := models.MyDateString(t)
	return &d
}
