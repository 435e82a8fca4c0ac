package workflow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/onyangohw/hardware_backend/workflow"
)

func openTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Use(config.NewTenantGuardPlugin()); err != nil {
		t.Fatalf("tenant guard: %v", err)
	}

	config.SetDB(db)
	models.MigrateTable()

	t.Cleanup(func() {
		config.SetDB(nil)
		sqlDB.Close()
	})
}

func newTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test User")
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	business, err := models.CreateBusiness(ctx, &models.NewBusiness{Name: "Test Hardware"})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	return utils.SetBusinessIdInContext(ctx, business.ID.String())
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// seedRepairJob sets up the fixtures the transfer workflow hangs off:
// a shop product, a customer and a fixed-price repair job with its invoice.
func seedRepairJob(t *testing.T, ctx context.Context) (*models.Product, *models.RepairJob) {
	t.Helper()

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Armature Coil",
		BuyingPrice:  dec("700"),
		SellingPrice: dec("1200"),
		Quantity:     dec("10"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Walk-in"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	jobType, err := models.CreateJobType(ctx, &models.NewJobType{
		Name:       "Motor Rewinding",
		FixedPrice: dec("5000"),
	})
	if err != nil {
		t.Fatalf("create job type: %v", err)
	}

	job, err := models.CreateRepairJob(ctx, &models.NewRepairJob{
		CustomerId:      customer.ID,
		JobTypeId:       &jobType.ID,
		ItemDescription: "Bench grinder",
	})
	if err != nil {
		t.Fatalf("create repair job: %v", err)
	}
	return product, job
}

func TestMaterialRequestLifecycle(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if request.Status != models.MaterialRequestStatusDraft {
		t.Fatalf("status = %s, want draft", request.Status)
	}
	if !strings.HasPrefix(request.RequestNumber, "MR-") {
		t.Fatalf("request number = %q", request.RequestNumber)
	}

	// a draft cannot be approved
	if _, err := workflow.ApproveMaterialRequest(ctx, request.ID); err == nil {
		t.Fatal("expected error approving a draft")
	}

	submitted, err := workflow.SubmitMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.MaterialRequestStatusSubmitted {
		t.Fatalf("status = %s, want submitted", submitted.Status)
	}

	approval, err := workflow.ApproveMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approval.TransferId == 0 {
		t.Fatal("no transfer order created")
	}

	// shop stock moved out through the ledger
	fresh, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !fresh.Quantity.Equal(dec("6")) {
		t.Fatalf("shop quantity = %s, want 6", fresh.Quantity)
	}

	order, err := models.GetTransferOrder(ctx, approval.TransferId)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if order.Status != models.TransferOrderStatusConfirmed {
		t.Fatalf("transfer status = %s, want confirmed", order.Status)
	}
	if !strings.HasPrefix(order.TransferNumber, "TR-") {
		t.Fatalf("transfer number = %q", order.TransferNumber)
	}
	// lines priced at buying price: 4 x 700
	if !order.TotalAmount.Equal(dec("2800")) {
		t.Fatalf("transfer total = %s, want 2800", order.TotalAmount)
	}

	updated, err := models.GetMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if updated.Status != models.MaterialRequestStatusApproved {
		t.Fatalf("status = %s, want approved", updated.Status)
	}

	// approving again is refused
	if _, err := workflow.ApproveMaterialRequest(ctx, request.ID); err == nil {
		t.Fatal("expected error approving twice")
	}
}

func TestSubmitMaterialRequest_InsufficientShopStock(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("20")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	_, err = workflow.SubmitMaterialRequest(ctx, request.ID)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if !strings.Contains(err.Error(), "Armature Coil") {
		t.Fatalf("error should name the short product: %v", err)
	}
}

func TestRejectMaterialRequest(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	// only a submitted request can be rejected
	if _, err := workflow.RejectMaterialRequest(ctx, request.ID, "no"); err == nil {
		t.Fatal("expected error rejecting a draft")
	}

	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// an empty reason is accepted
	rejected, err := workflow.RejectMaterialRequest(ctx, request.ID, "")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.MaterialRequestStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if rejected.ReviewedBy == nil || rejected.ReviewedAt == nil {
		t.Fatal("review fields not stamped")
	}
	if rejected.RejectionReason != "" {
		t.Fatalf("rejection reason = %q, want empty", rejected.RejectionReason)
	}

	if _, err := workflow.RejectMaterialRequest(ctx, request.ID, "again"); err == nil {
		t.Fatal("expected error rejecting twice")
	}
}

func TestResubmitMaterialRequest(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := workflow.RejectMaterialRequest(ctx, request.ID, "quantities look wrong"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	resubmitted, err := workflow.ResubmitMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != models.MaterialRequestStatusSubmitted {
		t.Fatalf("status = %s, want submitted", resubmitted.Status)
	}
	// the previous review is wiped on the way back into the queue
	if resubmitted.ReviewedBy != nil || resubmitted.ReviewedAt != nil {
		t.Fatal("review fields survived resubmission")
	}
	if resubmitted.RejectionReason != "" {
		t.Fatalf("rejection reason = %q, want empty", resubmitted.RejectionReason)
	}

	// an approved request stays out of the resubmit path
	if _, err := workflow.ApproveMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := workflow.ResubmitMaterialRequest(ctx, request.ID); err == nil {
		t.Fatal("expected error resubmitting an approved request")
	}
}

func TestResubmitMaterialRequest_BlockedOnStock(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := workflow.RejectMaterialRequest(ctx, request.ID, "hold"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// another approved transfer drains the shelf down to 2
	drain, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("8")},
		},
	})
	if err != nil {
		t.Fatalf("create drain request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, drain.ID); err != nil {
		t.Fatalf("submit drain: %v", err)
	}
	if _, err := workflow.ApproveMaterialRequest(ctx, drain.ID); err != nil {
		t.Fatalf("approve drain: %v", err)
	}

	_, err = workflow.ResubmitMaterialRequest(ctx, request.ID)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if !strings.Contains(err.Error(), "in stock 2, requested 4") {
		t.Fatalf("error should itemize the shortage: %v", err)
	}

	fresh, err := models.GetMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if fresh.Status != models.MaterialRequestStatusRejected {
		t.Fatalf("status = %s, want rejected", fresh.Status)
	}
}

func TestUpdateApprovedMaterialRequest(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	coil, job := seedRepairJob(t, ctx)

	brush, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Carbon Brush",
		BuyingPrice:  dec("200"),
		SellingPrice: dec("350"),
		Quantity:     dec("5"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: coil.ID, Quantity: dec("4")},
			{ProductId: brush.ID, Quantity: dec("2")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approval, err := workflow.ApproveMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	// an increase past the remaining shelf stock is refused outright
	_, err = workflow.UpdateApprovedMaterialRequest(ctx, request.ID, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: coil.ID, Quantity: dec("20")},
		},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}

	// grow the coil line, drop the brush line
	updated, err := workflow.UpdateApprovedMaterialRequest(ctx, request.ID, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: coil.ID, Quantity: dec("6")},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.MaterialRequestStatusApproved {
		t.Fatalf("status = %s, want approved", updated.Status)
	}
	if len(updated.Lines) != 1 || !updated.Lines[0].QuantityRequested.Equal(dec("6")) {
		t.Fatalf("lines = %+v", updated.Lines)
	}

	// only the extra two coils left the shelf
	freshCoil, err := models.GetProduct(ctx, coil.ID)
	if err != nil {
		t.Fatalf("get coil: %v", err)
	}
	if !freshCoil.Quantity.Equal(dec("4")) {
		t.Fatalf("coil quantity = %s, want 4", freshCoil.Quantity)
	}
	// the removed brushes went back to the shelf
	freshBrush, err := models.GetProduct(ctx, brush.ID)
	if err != nil {
		t.Fatalf("get brush: %v", err)
	}
	if !freshBrush.Quantity.Equal(dec("5")) {
		t.Fatalf("brush quantity = %s, want 5", freshBrush.Quantity)
	}

	// transfer total re-derived at the frozen transfer price: 6 x 700
	order, err := models.GetTransferOrder(ctx, approval.TransferId)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if !order.TotalAmount.Equal(dec("4200")) {
		t.Fatalf("transfer total = %s, want 4200", order.TotalAmount)
	}
	if order.Status != models.TransferOrderStatusConfirmed {
		t.Fatalf("transfer status = %s, want confirmed", order.Status)
	}

	// shrinking the line restocks the difference
	if _, err := workflow.UpdateApprovedMaterialRequest(ctx, request.ID, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: coil.ID, Quantity: dec("3")},
		},
	}); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	freshCoil, err = models.GetProduct(ctx, coil.ID)
	if err != nil {
		t.Fatalf("get coil: %v", err)
	}
	if !freshCoil.Quantity.Equal(dec("7")) {
		t.Fatalf("coil quantity = %s, want 7", freshCoil.Quantity)
	}
}

func TestPayTransferOrder(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approval, err := workflow.ApproveMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	// settlement is gated on the customer paying the repair itself
	_, err = workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("1000")}, "")
	if err == nil || err.Error() != "repair invoice must be fully paid before settling materials" {
		t.Fatalf("err = %v", err)
	}

	invoice, err := models.GetRepairInvoiceByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if _, err := models.CreateRepairPayment(ctx, &models.NewRepairPayment{
		InvoiceId: invoice.ID,
		Amount:    invoice.TotalAmount,
	}); err != nil {
		t.Fatalf("pay invoice: %v", err)
	}

	// partial settlement, with an idempotency key
	result, err := workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("1000")}, "pay-1")
	if err != nil {
		t.Fatalf("pay transfer: %v", err)
	}
	if result.Status != models.TransferOrderStatusPartiallySettled {
		t.Fatalf("status = %s, want partially_settled", result.Status)
	}
	if !result.Outstanding.Equal(dec("1800")) {
		t.Fatalf("outstanding = %s, want 1800", result.Outstanding)
	}

	// a retried request is absorbed without a second settlement
	replay, err := workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("1000")}, "pay-1")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Message != "Payment already recorded." {
		t.Fatalf("replay message = %q", replay.Message)
	}
	order, err := models.GetTransferOrder(ctx, approval.TransferId)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if len(order.Settlements) != 1 {
		t.Fatalf("settlements = %d, want 1", len(order.Settlements))
	}

	// overshooting the balance is refused
	_, err = workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("5000")}, "")
	if err == nil {
		t.Fatal("expected overpayment error")
	}

	final, err := workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("1800")}, "")
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if final.Status != models.TransferOrderStatusClosed {
		t.Fatalf("status = %s, want closed", final.Status)
	}
	if !final.Outstanding.IsZero() {
		t.Fatalf("outstanding = %s, want 0", final.Outstanding)
	}

	// the closed order takes no more money
	_, err = workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("1")}, "")
	if err == nil || err.Error() != "transfer is already fully settled" {
		t.Fatalf("err = %v", err)
	}

	// shop side confirms receipt of the cash
	clear, err := workflow.ClearTransferSettlement(ctx, result.SettlementId)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !clear.Cleared {
		t.Fatal("settlement not cleared")
	}

	again, err := workflow.ClearTransferSettlement(ctx, result.SettlementId)
	if err != nil {
		t.Fatalf("clear again: %v", err)
	}
	if again.Message != "Already cleared." {
		t.Fatalf("second clear message = %q", again.Message)
	}
}

// The settled sum may never pass the total, even when the order row has not
// caught up with a settlement recorded by another instance.
func TestPayTransferOrder_SettledSumNeverPassesTotal(t *testing.T) {
	openTestDB(t)
	ctx := newTestContext(t)

	product, job := seedRepairJob(t, ctx)

	request, err := models.CreateMaterialRequest(ctx, &models.NewMaterialRequest{
		RepairJobId: &job.ID,
		Lines: []models.NewMaterialRequestLine{
			{ProductId: product.ID, Quantity: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := workflow.SubmitMaterialRequest(ctx, request.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approval, err := workflow.ApproveMaterialRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	invoice, err := models.GetRepairInvoiceByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if _, err := models.CreateRepairPayment(ctx, &models.NewRepairPayment{
		InvoiceId: invoice.ID,
		Amount:    invoice.TotalAmount,
	}); err != nil {
		t.Fatalf("pay invoice: %v", err)
	}

	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	// a settlement lands without its rollup onto the order row
	stray := models.TransferSettlement{
		BusinessId:      businessId,
		TransferOrderId: approval.TransferId,
		Amount:          dec("2000"),
		SettlementDate:  time.Now().UTC(),
		Method:          models.PaymentMethodCash,
		SettledBy:       1,
	}
	if err := config.GetDB().WithContext(ctx).Create(&stray).Error; err != nil {
		t.Fatalf("create settlement: %v", err)
	}

	// the stale order row says 2800 is still outstanding, the settlement
	// table says 800. Paying 2800 has to fail on the recorded sum.
	_, err = workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("2800")}, "")
	if err == nil {
		t.Fatal("expected overpayment error")
	}
	if !strings.Contains(err.Error(), "outstanding balance of 800") {
		t.Fatalf("err = %v", err)
	}

	var count int64
	err = config.GetDB().WithContext(ctx).Model(&models.TransferSettlement{}).
		Where("business_id = ? AND transfer_order_id = ?", businessId, approval.TransferId).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count settlements: %v", err)
	}
	if count != 1 {
		t.Fatalf("settlements = %d, want 1", count)
	}

	// the remaining 800 still goes through
	final, err := workflow.PayTransferOrder(ctx, approval.TransferId, &workflow.NewTransferPayment{Amount: dec("800")}, "")
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if final.Status != models.TransferOrderStatusClosed {
		t.Fatalf("status = %s, want closed", final.Status)
	}
}
