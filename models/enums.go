package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

/* typed status enums. stored as plain strings so the schema stays portable */

type UnitCode string

const (
	UnitCodeShop     UnitCode = "shop"
	UnitCodeWorkshop UnitCode = "workshop"
)

func (u UnitCode) Valid() bool {
	return u == UnitCodeShop || u == UnitCodeWorkshop
}

type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleOwner       UserRole = "owner"
	UserRoleManager     UserRole = "manager"
	UserRoleCashier     UserRole = "cashier"
	UserRoleTechnician  UserRole = "technician"
	UserRoleStorekeeper UserRole = "storekeeper"
	UserRoleStaff       UserRole = "staff"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOwner, UserRoleManager, UserRoleCashier,
		UserRoleTechnician, UserRoleStorekeeper, UserRoleStaff:
		return true
	}
	return false
}

// shop-side roles may approve requests and clear settlements
func (r UserRole) IsShopSide() bool {
	switch r {
	case UserRoleAdmin, UserRoleOwner, UserRoleManager, UserRoleCashier, UserRoleStorekeeper:
		return true
	}
	return false
}

// workshop-side roles raise requests and pay settlements
func (r UserRole) IsWorkshopSide() bool {
	switch r {
	case UserRoleAdmin, UserRoleOwner, UserRoleManager, UserRoleTechnician, UserRoleStaff:
		return true
	}
	return false
}

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeContractor CustomerType = "contractor"
	CustomerTypeCompany    CustomerType = "company"
)

func (t CustomerType) Valid() bool {
	return t == CustomerTypeIndividual || t == CustomerTypeContractor || t == CustomerTypeCompany
}

type StockEntryType string

const (
	StockEntryTypeAdded          StockEntryType = "added"
	StockEntryTypeSold           StockEntryType = "sold"
	StockEntryTypeReceived       StockEntryType = "received"
	StockEntryTypeAdjusted       StockEntryType = "adjusted"
	StockEntryTypeReturned       StockEntryType = "returned"
	StockEntryTypeWrittenOff     StockEntryType = "written_off"
	StockEntryTypeTransferredOut StockEntryType = "transferred_out"
	StockEntryTypeTransferredIn  StockEntryType = "transferred_in"
)

func (t StockEntryType) Valid() bool {
	switch t {
	case StockEntryTypeAdded, StockEntryTypeSold, StockEntryTypeReceived,
		StockEntryTypeAdjusted, StockEntryTypeReturned, StockEntryTypeWrittenOff,
		StockEntryTypeTransferredOut, StockEntryTypeTransferredIn:
		return true
	}
	return false
}

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusConfirmed SaleStatus = "confirmed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusRefunded  SaleStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentStatusNotPaid  PaymentStatus = "not_paid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusNotPaid, PaymentStatusPartial, PaymentStatusPaid,
		PaymentStatusPending, PaymentStatusRefunded:
		return true
	}
	return false
}

type FulfillmentStatus string

const (
	FulfillmentStatusPending FulfillmentStatus = "pending"
	FulfillmentStatusChecked FulfillmentStatus = "checked"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodMpesa    PaymentMethod = "mpesa"
	PaymentMethodBank     PaymentMethod = "bank"
	PaymentMethodCheque   PaymentMethod = "cheque"
	PaymentMethodInternal PaymentMethod = "internal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodBank, PaymentMethodCheque, PaymentMethodInternal:
		return true
	}
	return false
}

type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "rent"
	ExpenseCategoryElectricity ExpenseCategory = "electricity"
	ExpenseCategorySalary      ExpenseCategory = "salary"
	ExpenseCategoryInventory   ExpenseCategory = "inventory"
	ExpenseCategoryMisc        ExpenseCategory = "misc"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryElectricity, ExpenseCategorySalary,
		ExpenseCategoryInventory, ExpenseCategoryMisc:
		return true
	}
	return false
}

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent              PurchaseOrderStatus = "sent"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "received"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "closed"
)

type RepairJobStatus string

const (
	RepairJobStatusReceived   RepairJobStatus = "received"
	RepairJobStatusInProgress RepairJobStatus = "in_progress"
	RepairJobStatusOnHold     RepairJobStatus = "on_hold"
	RepairJobStatusCompleted  RepairJobStatus = "completed"
	RepairJobStatusCollected  RepairJobStatus = "collected"
	RepairJobStatusCancelled  RepairJobStatus = "cancelled"
)

func (s RepairJobStatus) Valid() bool {
	switch s {
	case RepairJobStatusReceived, RepairJobStatusInProgress, RepairJobStatusOnHold,
		RepairJobStatusCompleted, RepairJobStatusCollected, RepairJobStatusCancelled:
		return true
	}
	return false
}

type RepairPriority string

const (
	RepairPriorityLow    RepairPriority = "low"
	RepairPriorityNormal RepairPriority = "normal"
	RepairPriorityHigh   RepairPriority = "high"
	RepairPriorityUrgent RepairPriority = "urgent"
)

func (p RepairPriority) Valid() bool {
	switch p {
	case RepairPriorityLow, RepairPriorityNormal, RepairPriorityHigh, RepairPriorityUrgent:
		return true
	}
	return false
}

type RepairInvoiceStatus string

const (
	RepairInvoiceStatusUnpaid  RepairInvoiceStatus = "unpaid"
	RepairInvoiceStatusPartial RepairInvoiceStatus = "partial"
	RepairInvoiceStatusPaid    RepairInvoiceStatus = "paid"
)

type MaterialRequestStatus string

const (
	MaterialRequestStatusDraft     MaterialRequestStatus = "draft"
	MaterialRequestStatusSubmitted MaterialRequestStatus = "submitted"
	MaterialRequestStatusApproved  MaterialRequestStatus = "approved"
	MaterialRequestStatusRejected  MaterialRequestStatus = "rejected"
)

func (s MaterialRequestStatus) Valid() bool {
	switch s {
	case MaterialRequestStatusDraft, MaterialRequestStatusSubmitted,
		MaterialRequestStatusApproved, MaterialRequestStatusRejected:
		return true
	}
	return false
}

type TransferOrderStatus string

const (
	TransferOrderStatusDraft            TransferOrderStatus = "draft"
	TransferOrderStatusConfirmed        TransferOrderStatus = "confirmed"
	TransferOrderStatusPartiallySettled TransferOrderStatus = "partially_settled"
	TransferOrderStatusClosed           TransferOrderStatus = "closed"
)

// TransferTab is the derived settlement classification. Never stored.
type TransferTab string

const (
	TransferTabPendingPayment   TransferTab = "pending_payment"
	TransferTabPendingClearance TransferTab = "pending_clearance"
	TransferTabClosedCleared    TransferTab = "closed_cleared"
)

type TimelineEventType string

const (
	TimelineEventTypeRequestSubmitted TimelineEventType = "request_submitted"
	TimelineEventTypeRequestApproved  TimelineEventType = "request_approved"
	TimelineEventTypeRequestRejected  TimelineEventType = "request_rejected"
	TimelineEventTypeTransferPaid     TimelineEventType = "transfer_paid"
	TimelineEventTypeSettlementClear  TimelineEventType = "settlement_cleared"
	TimelineEventTypeSaleCompleted    TimelineEventType = "sale_completed"
	TimelineEventTypeLoanPayment      TimelineEventType = "loan_payment"
	TimelineEventTypeSaleRefunded     TimelineEventType = "sale_refunded"
	TimelineEventTypeJobStatusChange  TimelineEventType = "job_status_change"
	TimelineEventTypeGoodsReceived    TimelineEventType = "goods_received"
	TimelineEventTypeInvoicePayment   TimelineEventType = "invoice_payment"
)

/* dates posted as "2006-01-02T15:04:05" local strings */

type MyDateString time.Time

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).Format("2006-01-02T15:04:05"))), nil
}

// Parse the string into time.Time object
func (t *MyDateString) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	localTime, err := time.Parse("2006-01-02T15:04:05", str)
	if err != nil {
		// date-only form used by list filters
		localTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return errors.New("error parsing datetime")
		}
	}
	*t = MyDateString(localTime)

	return nil
}

func (t *MyDateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Africa/Nairobi"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = MyDateString(utcTime)

	return nil
}

func (t *MyDateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Africa/Nairobi"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999, // Max nanoseconds
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = MyDateString(utcTime)

	return nil
}

// Value implements the driver.Valuer interface
func (t MyDateString) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements the sql.Scanner interface
func (t *MyDateString) Scan(value interface{}) error {
	if value == nil {
		*t = MyDateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = MyDateString(v)
	default:
		return fmt.Errorf("cannot convert %T to MyDateString", value)
	}
	return nil
}

func (t *MyDateString) SetDefaultNowIfNil() *MyDateString {
	if t == nil {
		now := MyDateString(time.Now())
		return &now
	}
	return t
}
