package models

import (
	"log"

	"github.com/onyangohw/hardware_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Business{}, &Unit{}, &User{},
		&Customer{}, &Category{}, &Product{}, &StockEntry{},
		&Sale{}, &SaleItem{}, &Payment{}, &Refund{},
		&Expense{}, &DailyCashClose{},
		&Quote{}, &QuoteItem{},
		&Supplier{}, &PurchaseOrder{}, &PurchaseOrderLine{}, &GoodsReceipt{}, &GoodsReceiptLine{},
		&JobType{}, &RepairJob{}, &RepairJobPart{}, &LabourCharge{}, &RepairInvoice{}, &RepairPayment{},
		&MaterialRequest{}, &MaterialRequestLine{},
		&TransferOrder{}, &TransferOrderLine{}, &TransferSettlement{},
		&ActivityLog{}, &TimelineEvent{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
