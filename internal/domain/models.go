package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// Deletable adds soft-delete support. Soft-deleted rows are excluded from
// every active-state read and from totals aggregation.
type Deletable struct {
	IsDeleted bool `gorm:"not null;default:false;index;column:is_deleted" json:"isDeleted"`
}

// UserRole represents the role of a system user
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTechnician:
		return true
	}
	return false
}

// User represents a system user (shop staff)
type User struct {
	BaseModel
	Username       string   `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	FullName       string   `gorm:"type:varchar(100);not null;column:full_name" json:"fullName"`
	HashedPassword string   `gorm:"type:varchar(255);not null;column:hashed_password" json:"-"`
	Role           UserRole `gorm:"type:varchar(20);not null;default:'technician'" json:"role"`
	IsActive       bool     `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// CustomerType represents the classification of a customer
type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerCorporate  CustomerType = "corporate"
)

// IsValid checks if the CustomerType is a valid enum value
func (ct CustomerType) IsValid() bool {
	switch ct {
	case CustomerIndividual, CustomerCorporate:
		return true
	}
	return false
}

// Customer represents a person or company that owns vehicles
type Customer struct {
	BaseModel
	Deletable
	Type        CustomerType `gorm:"type:varchar(20);not null;default:'individual'" json:"type"`
	FullName    string       `gorm:"type:varchar(150);not null;index;column:full_name" json:"fullName"`
	CompanyName string       `gorm:"type:varchar(200);column:company_name" json:"companyName,omitempty"`
	TaxNumber   string       `gorm:"type:varchar(20);index;column:tax_number" json:"taxNumber,omitempty"`
	TaxOffice   string       `gorm:"type:varchar(100);column:tax_office" json:"taxOffice,omitempty"`
	Phone       string       `gorm:"type:varchar(20);not null;index" json:"phone"`
	Email       string       `gorm:"type:varchar(100)" json:"email,omitempty"`
	Address     string       `gorm:"type:text" json:"address,omitempty"`
	City        string       `gorm:"type:varchar(50)" json:"city,omitempty"`
	Notes       string       `gorm:"type:text" json:"notes,omitempty"`
	Vehicles    []Vehicle    `gorm:"foreignKey:CustomerID" json:"vehicles,omitempty"`
}

// FuelType represents the fuel type of a vehicle
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelLPG      FuelType = "lpg"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

// TransmissionType represents the transmission of a vehicle
type TransmissionType string

const (
	TransmissionManual    TransmissionType = "manual"
	TransmissionAutomatic TransmissionType = "automatic"
)

// Vehicle represents a customer's vehicle
type Vehicle struct {
	BaseModel
	Deletable
	CustomerID           uint             `gorm:"not null;index;column:customer_id" json:"customerId"`
	Customer             *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PlateNumber          string           `gorm:"type:varchar(15);not null;uniqueIndex;column:plate_number" json:"plateNumber"`
	Brand                string           `gorm:"type:varchar(50);not null" json:"brand"`
	Model                string           `gorm:"type:varchar(50);not null" json:"model"`
	Year                 *int             `json:"year,omitempty"`
	FuelType             FuelType         `gorm:"type:varchar(20);column:fuel_type" json:"fuelType,omitempty"`
	TransmissionType     TransmissionType `gorm:"type:varchar(20);column:transmission_type" json:"transmissionType,omitempty"`
	ChassisNumber        string           `gorm:"type:varchar(30);index;column:chassis_number" json:"chassisNumber,omitempty"`
	EngineNumber         string           `gorm:"type:varchar(30);column:engine_number" json:"engineNumber,omitempty"`
	CurrentKM            *int             `gorm:"column:current_km" json:"currentKm,omitempty"`
	InspectionExpiryDate *time.Time       `gorm:"type:date;column:inspection_expiry_date" json:"inspectionExpiryDate,omitempty"`
	InsuranceExpiryDate  *time.Time       `gorm:"type:date;column:insurance_expiry_date" json:"insuranceExpiryDate,omitempty"`
	Notes                string           `gorm:"type:text" json:"notes,omitempty"`
}

// WorkOrderStatus represents the lifecycle state of a work order
type WorkOrderStatus string

const (
	StatusPending    WorkOrderStatus = "pending"
	StatusApproved   WorkOrderStatus = "approved"
	StatusInProgress WorkOrderStatus = "in_progress"
	StatusCompleted  WorkOrderStatus = "completed"
	StatusDelivered  WorkOrderStatus = "delivered"
	StatusCancelled  WorkOrderStatus = "cancelled"
)

// IsValid checks if the WorkOrderStatus is a valid enum value
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusInProgress, StatusCompleted, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this status
func (s WorkOrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// WorkOrder represents a unit of repair work tracked from intake through delivery
type WorkOrder struct {
	BaseModel
	Deletable
	WorkOrderNumber      string          `gorm:"type:varchar(20);not null;uniqueIndex;column:work_order_number" json:"workOrderNumber"`
	VehicleID            uint            `gorm:"not null;index;column:vehicle_id" json:"vehicleId"`
	Vehicle              *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	CustomerID           uint            `gorm:"not null;index;column:customer_id" json:"customerId"`
	Customer             *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TechnicianID         *uint           `gorm:"index;column:technician_id" json:"technicianId,omitempty"`
	Technician           *User           `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	ComplaintDescription string          `gorm:"type:text;column:complaint_description" json:"complaintDescription,omitempty"`
	InternalNotes        string          `gorm:"type:text;column:internal_notes" json:"internalNotes,omitempty"`
	KMIn                 *int            `gorm:"column:km_in" json:"kmIn,omitempty"`
	KMOut                *int            `gorm:"column:km_out" json:"kmOut,omitempty"`
	FuelLevel            string          `gorm:"type:varchar(20);column:fuel_level" json:"fuelLevel,omitempty"`
	Status               WorkOrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Financial rollups, recomputed from items on every item mutation
	LaborTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:labor_total" json:"laborTotal"`
	PartsTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:parts_total" json:"partsTotal"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:discount_total" json:"discountTotal"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	// Legacy order-level rate; aggregation uses per-item VAT rates instead
	VATRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:20;column:vat_rate" json:"vatRate"`
	VATTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:vat_total" json:"vatTotal"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:grand_total" json:"grandTotal"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	Items    []WorkOrderItem `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment       `gorm:"foreignKey:WorkOrderID" json:"payments,omitempty"`
	Invoice  *Invoice        `gorm:"foreignKey:WorkOrderID" json:"invoice,omitempty"`
}

// PhotoCategory classifies a work order photo
type PhotoCategory string

const (
	PhotoBefore PhotoCategory = "before"
	PhotoAfter  PhotoCategory = "after"
	PhotoDamage PhotoCategory = "damage"
	PhotoOther  PhotoCategory = "other"
)

// IsValid checks if the PhotoCategory is a valid enum value
func (c PhotoCategory) IsValid() bool {
	switch c {
	case PhotoBefore, PhotoAfter, PhotoDamage, PhotoOther:
		return true
	}
	return false
}

// WorkOrderPhoto represents an image attached to a work order. The file
// itself lives on disk under the upload directory; the row carries its
// generated name and metadata.
type WorkOrderPhoto struct {
	BaseModel
	WorkOrderID      uint          `gorm:"not null;index;column:work_order_id" json:"workOrderId"`
	WorkOrder        *WorkOrder    `gorm:"foreignKey:WorkOrderID" json:"-"`
	Filename         string        `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalFilename string        `gorm:"type:varchar(255);not null;column:original_filename" json:"originalFilename"`
	Category         PhotoCategory `gorm:"type:varchar(20);not null;default:'other'" json:"category"`
	Caption          string        `gorm:"type:text" json:"caption,omitempty"`
	UploadedBy       *uint         `gorm:"column:uploaded_by" json:"uploadedBy,omitempty"`
	Uploader         *User         `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

// WorkOrderItemType represents the kind of a billable line item
type WorkOrderItemType string

const (
	ItemTypePart  WorkOrderItemType = "part"
	ItemTypeLabor WorkOrderItemType = "labor"
)

// IsValid checks if the WorkOrderItemType is a valid enum value
func (t WorkOrderItemType) IsValid() bool {
	switch t {
	case ItemTypePart, ItemTypeLabor:
		return true
	}
	return false
}

// WorkOrderItem represents a billable part or labor entry on a work order
type WorkOrderItem struct {
	BaseModel
	WorkOrderID uint              `gorm:"not null;index;column:work_order_id" json:"workOrderId"`
	WorkOrder   *WorkOrder        `gorm:"foreignKey:WorkOrderID" json:"-"`
	Type        WorkOrderItemType `gorm:"type:varchar(10);not null" json:"type"`
	PartID      *uint             `gorm:"column:part_id" json:"partId,omitempty"`
	Part        *Part             `gorm:"foreignKey:PartID" json:"part,omitempty"`
	Description string            `gorm:"type:varchar(300);not null" json:"description"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0;column:unit_price" json:"unitPrice"`
	Discount    decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	VATRate     decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:20;column:vat_rate" json:"vatRate"`
	TotalPrice  decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0;column:total_price" json:"totalPrice"`
}

// Part represents an inventory item
type Part struct {
	BaseModel
	StockCode     string          `gorm:"type:varchar(50);not null;uniqueIndex;column:stock_code" json:"stockCode"`
	Name          string          `gorm:"type:varchar(200);not null" json:"name"`
	Category      string          `gorm:"type:varchar(100);index" json:"category,omitempty"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:purchase_price" json:"purchasePrice"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:sale_price" json:"salePrice"`
	StockQuantity int             `gorm:"not null;default:0;column:stock_quantity" json:"stockQuantity"`
	CriticalLevel int             `gorm:"not null;default:5;column:critical_level" json:"criticalLevel"`
	SupplierName  string          `gorm:"type:varchar(200);column:supplier_name" json:"supplierName,omitempty"`
	IsActive      bool            `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsValid checks if the PaymentMethod is a valid enum value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Payment represents money received against a work order
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	WorkOrderID     uint            `gorm:"not null;index;column:work_order_id" json:"workOrderId"`
	WorkOrder       *WorkOrder      `gorm:"foreignKey:WorkOrderID" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null;column:payment_method" json:"paymentMethod"`
	PaymentDate     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;column:payment_date" json:"paymentDate"`
	ReferenceNumber string          `gorm:"type:varchar(100);column:reference_number" json:"referenceNumber,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// PaymentStatus represents the settlement state of an invoice
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Invoice is a point-in-time financial snapshot of a work order.
// Totals are copied at issuance and never change afterwards.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(30);not null;uniqueIndex;column:invoice_number" json:"invoiceNumber"`
	WorkOrderID   uint            `gorm:"not null;uniqueIndex;column:work_order_id" json:"workOrderId"`
	WorkOrder     *WorkOrder      `gorm:"foreignKey:WorkOrderID" json:"-"`
	IssueDate     time.Time       `gorm:"type:date;not null;column:issue_date" json:"issueDate"`
	DueDate       *time.Time      `gorm:"type:date;column:due_date" json:"dueDate,omitempty"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid';column:payment_status" json:"paymentStatus"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	VATTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;column:vat_total" json:"vatTotal"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;column:grand_total" json:"grandTotal"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog represents an append-only audit trail entry.
// Entries are never updated or deleted.
type AuditLog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;column:user_id" json:"userId"`
	EntityName  string      `gorm:"type:varchar(50);not null;index;column:entity_name" json:"entityName"`
	EntityID    uint        `gorm:"not null;column:entity_id" json:"entityId"`
	Action      AuditAction `gorm:"type:varchar(10);not null" json:"action"`
	ChangesJSON string      `gorm:"type:text;column:changes_json" json:"changes,omitempty"`
	Timestamp   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

// ActiveStatuses are the statuses of work orders still on the shop floor
var ActiveStatuses = []WorkOrderStatus{StatusPending, StatusApproved, StatusInProgress}

// BilledStatuses are the statuses whose totals count as earned revenue
var BilledStatuses = []WorkOrderStatus{StatusCompleted, StatusDelivered}
