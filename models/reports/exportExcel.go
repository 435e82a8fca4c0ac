package reports

import (
	"context"
	"fmt"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportSalesReportExcel renders the daily sales report rows into a workbook.
func ExportSalesReportExcel(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString) (*excelize.File, error) {

	report, err := GetSalesReport(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "Date")
	f.SetCellValue("Sheet1", "B1", "Sales")
	f.SetCellValue("Sheet1", "C1", "Discounts")
	f.SetCellValue("Sheet1", "D1", "Refunds")
	f.SetCellValue("Sheet1", "E1", "Expenses")
	f.SetCellValue("Sheet1", "F1", "Loans")

	for i, date := range report.Chart.Dates {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), date)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), report.Chart.Sales[i].InexactFloat64())
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), report.Chart.Discounts[i].InexactFloat64())
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), report.Chart.Refunds[i].InexactFloat64())
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), report.Chart.Expenses[i].InexactFloat64())
		f.SetCellValue("Sheet1", "F"+fmt.Sprint(i+2), report.Chart.Loans[i].InexactFloat64())
	}

	totalsRow := len(report.Chart.Dates) + 3
	f.SetCellValue("Sheet1", "A"+fmt.Sprint(totalsRow), "Totals")
	f.SetCellValue("Sheet1", "B"+fmt.Sprint(totalsRow), report.TotalSales.InexactFloat64())
	f.SetCellValue("Sheet1", "C"+fmt.Sprint(totalsRow), report.TotalDiscounts.InexactFloat64())
	f.SetCellValue("Sheet1", "D"+fmt.Sprint(totalsRow), report.TotalRefunds.InexactFloat64())
	f.SetCellValue("Sheet1", "E"+fmt.Sprint(totalsRow), report.TotalExpenses.InexactFloat64())
	f.SetCellValue("Sheet1", "F"+fmt.Sprint(totalsRow), report.TotalLoans.InexactFloat64())
	f.SetCellValue("Sheet1", "A"+fmt.Sprint(totalsRow+1), "Gross profit")
	f.SetCellValue("Sheet1", "B"+fmt.Sprint(totalsRow+1), report.GrossProfit.InexactFloat64())
	f.SetCellValue("Sheet1", "A"+fmt.Sprint(totalsRow+2), "Profit")
	f.SetCellValue("Sheet1", "B"+fmt.Sprint(totalsRow+2), report.Profit.InexactFloat64())

	return f, nil
}

// ExportStockReportExcel renders the low stock list into a workbook.
func ExportStockReportExcel(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString) (*excelize.File, error) {

	report, err := GetStockReport(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "Product")
	f.SetCellValue("Sheet1", "B1", "InStock")
	f.SetCellValue("Sheet1", "C1", "Threshold")
	f.SetCellValue("Sheet1", "D1", "AvgDailySales")
	f.SetCellValue("Sheet1", "E1", "SuggestedReorder")

	for i, p := range report.LowStockProducts {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), p.Name)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), p.Quantity.InexactFloat64())
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), p.Threshold.InexactFloat64())
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), p.AvgDailySales)
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), p.SuggestedReorder)
	}

	summaryRow := len(report.LowStockProducts) + 3
	f.SetCellValue("Sheet1", "A"+fmt.Sprint(summaryRow), "Total stock qty")
	f.SetCellValue("Sheet1", "B"+fmt.Sprint(summaryRow), report.TotalStockQty.InexactFloat64())
	f.SetCellValue("Sheet1", "A"+fmt.Sprint(summaryRow+1), "Total stock value")
	f.SetCellValue("Sheet1", "B"+fmt.Sprint(summaryRow+1), report.TotalStockValue.InexactFloat64())

	return f, nil
}
