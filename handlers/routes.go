package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the full REST surface. Authentication and role
// checks live inside the handlers; SessionMiddleware has already resolved
// the token into the request context by the time these run.
func RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", LoginHandler())
	r.POST("/auth/logout", LogoutHandler())
	r.GET("/me", MeHandler())
	r.POST("/auth/change-password", ChangePasswordHandler())

	r.GET("/users", ListUsersHandler())
	r.POST("/users", CreateUserHandler())
	r.GET("/users/:id", GetUserHandler())
	r.PUT("/users/:id", UpdateUserHandler())
	r.DELETE("/users/:id", DeleteUserHandler())

	r.GET("/customers", PaginateCustomersHandler())
	r.POST("/customers", CreateCustomerHandler())
	r.GET("/customers/:id", GetCustomerHandler())
	r.PUT("/customers/:id", UpdateCustomerHandler())
	r.DELETE("/customers/:id", DeleteCustomerHandler())

	r.GET("/categories", ListCategoriesHandler())
	r.POST("/categories", CreateCategoryHandler())
	r.GET("/categories/:id", GetCategoryHandler())
	r.PUT("/categories/:id", UpdateCategoryHandler())
	r.DELETE("/categories/:id", DeleteCategoryHandler())

	r.GET("/products", PaginateProductsHandler())
	r.POST("/products", CreateProductHandler())
	r.GET("/products/:id", GetProductHandler())
	r.PUT("/products/:id", UpdateProductHandler())
	r.DELETE("/products/:id", DeleteProductHandler())
	r.POST("/products/:id/add-stock", AddProductStockHandler())
	r.POST("/products/:id/adjust-stock", AdjustProductStockHandler())

	r.GET("/stock-entries", PaginateStockEntriesHandler())

	r.POST("/pos/complete-sale", CompletePosSaleHandler())

	r.GET("/sales", PaginateSalesHandler())
	r.GET("/sales/:id", GetSaleHandler())
	r.POST("/sales/:id/mark-checked", MarkSaleCheckedHandler())
	r.POST("/sales/:id/refund", RefundSaleHandler())

	r.GET("/loans", PaginateLoansHandler())
	r.GET("/loans/summary", LoanSummaryHandler())
	r.POST("/loans/:id/pay", PayLoanHandler())

	r.GET("/payments", PaginatePaymentsHandler())
	r.GET("/payments/:id", GetPaymentHandler())
	r.GET("/refunds", PaginateRefundsHandler())
	r.GET("/refunds/:id", GetRefundHandler())

	r.GET("/expenses", PaginateExpensesHandler())
	r.POST("/expenses", CreateExpenseHandler())
	r.GET("/expenses/:id", GetExpenseHandler())
	r.PUT("/expenses/:id", UpdateExpenseHandler())
	r.DELETE("/expenses/:id", DeleteExpenseHandler())

	r.GET("/quotes", PaginateQuotesHandler())
	r.POST("/quotes", CreateQuoteHandler())
	r.GET("/quotes/:id", GetQuoteHandler())
	r.PUT("/quotes/:id", UpdateQuoteHandler())
	r.POST("/quotes/:id/status", ChangeQuoteStatusHandler())
	r.DELETE("/quotes/:id", DeleteQuoteHandler())

	r.GET("/timeline", PaginateTimelineHandler())
	r.GET("/activity-logs", PaginateActivityLogsHandler())

	r.GET("/units", ListUnitsHandler())
	r.GET("/units/:id", GetUnitHandler())

	r.GET("/job-types", ListJobTypesHandler())
	r.POST("/job-types", CreateJobTypeHandler())
	r.GET("/job-types/:id", GetJobTypeHandler())
	r.PUT("/job-types/:id", UpdateJobTypeHandler())
	r.DELETE("/job-types/:id", DeleteJobTypeHandler())

	r.GET("/suppliers", PaginateSuppliersHandler())
	r.POST("/suppliers", CreateSupplierHandler())
	r.GET("/suppliers/:id", GetSupplierHandler())
	r.PUT("/suppliers/:id", UpdateSupplierHandler())
	r.DELETE("/suppliers/:id", DeleteSupplierHandler())

	r.GET("/purchase-orders", PaginatePurchaseOrdersHandler())
	r.POST("/purchase-orders", CreatePurchaseOrderHandler())
	r.GET("/purchase-orders/:id", GetPurchaseOrderHandler())
	r.PUT("/purchase-orders/:id", UpdatePurchaseOrderHandler())
	r.POST("/purchase-orders/:id/send", SendPurchaseOrderHandler())
	r.POST("/purchase-orders/:id/close", ClosePurchaseOrderHandler())
	r.DELETE("/purchase-orders/:id", DeletePurchaseOrderHandler())

	r.GET("/goods-receipts", PaginateGoodsReceiptsHandler())
	r.POST("/goods-receipts", ReceiveGoodsHandler())
	r.GET("/goods-receipts/:id", GetGoodsReceiptHandler())

	r.GET("/repair-jobs", PaginateRepairJobsHandler())
	r.POST("/repair-jobs", CreateRepairJobHandler())
	r.GET("/repair-jobs/:id", GetRepairJobHandler())
	r.PUT("/repair-jobs/:id", UpdateRepairJobHandler())
	r.POST("/repair-jobs/:id/complete", CompleteRepairJobHandler())
	r.POST("/repair-jobs/:id/collect", CollectRepairJobHandler())
	r.DELETE("/repair-jobs/:id", DeleteRepairJobHandler())
	r.GET("/repair-jobs/:id/invoice", GetRepairJobInvoiceHandler())

	r.GET("/repair-payments", PaginateRepairPaymentsHandler())
	r.POST("/repair-payments", CreateRepairPaymentHandler())
	r.GET("/repair-payments/:id", GetRepairPaymentHandler())

	r.GET("/material-requests", PaginateMaterialRequestsHandler())
	r.POST("/material-requests", CreateMaterialRequestHandler())
	r.GET("/material-requests/:id", GetMaterialRequestHandler())
	r.PUT("/material-requests/:id", UpdateMaterialRequestHandler())
	r.DELETE("/material-requests/:id", DeleteMaterialRequestHandler())
	r.POST("/material-requests/:id/submit", SubmitMaterialRequestHandler())
	r.POST("/material-requests/:id/resubmit", ResubmitMaterialRequestHandler())
	r.POST("/material-requests/:id/approve", ApproveMaterialRequestHandler())
	r.POST("/material-requests/:id/reject", RejectMaterialRequestHandler())

	r.GET("/transfer-orders", PaginateTransferOrdersHandler())
	r.GET("/transfer-orders/:id", GetTransferOrderHandler())
	r.POST("/transfer-orders/:id/pay", PayTransferOrderHandler())

	r.GET("/transfer-settlements", PaginateTransferSettlementsHandler())
	r.GET("/transfer-settlements/:id", GetTransferSettlementHandler())
	r.POST("/transfer-settlements/:id/clear", ClearTransferSettlementHandler())

	r.GET("/finance/shop-cashbook", ShopCashbookHandler())
	r.GET("/finance/workshop-cashbook", WorkshopCashbookHandler())
	r.POST("/finance/shop-cash-close", ShopCashCloseHandler())
	r.POST("/finance/workshop-cash-close", WorkshopCashCloseHandler())
	r.GET("/admin/cashbook-report", AdminCashbookReportHandler())
	r.GET("/admin/unit-overview", AdminUnitOverviewHandler())

	r.GET("/dashboard/metrics", DashboardMetricsHandler())
	r.GET("/dashboard/monthly-sales", MonthlySalesHandler())
	r.GET("/dashboard/sales-summary", SalesSummaryHandler())
	r.GET("/dashboard/recent-orders", RecentOrdersHandler())
	r.GET("/dashboard/recent-logins", RecentLoginsHandler())
	r.GET("/onyango-dashboard", WorkshopDashboardHandler())

	r.GET("/reports/sales", SalesReportHandler())
	r.GET("/reports/stock", StockReportHandler())
	r.GET("/reports/short", ShortReportHandler())
	r.GET("/reports/customer-statement", CustomerStatementHandler())
	r.GET("/reports/sales/export", ExportSalesReportHandler())
	r.GET("/reports/stock/export", ExportStockReportHandler())
}
