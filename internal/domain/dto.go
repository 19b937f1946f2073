package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Auth DTOs

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterRequest struct {
	Username string   `json:"username" validate:"required,max=50,alphanum"`
	FullName string   `json:"fullName" validate:"required,max=100"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	User        *User  `json:"user"`
}

// Customer request DTOs

type CreateCustomerRequest struct {
	Type        CustomerType `json:"type,omitempty"`
	FullName    string       `json:"fullName" validate:"required,max=150"`
	CompanyName string       `json:"companyName,omitempty" validate:"max=200"`
	TaxNumber   string       `json:"taxNumber,omitempty" validate:"max=20"`
	TaxOffice   string       `json:"taxOffice,omitempty" validate:"max=100"`
	Phone       string       `json:"phone" validate:"required,max=20"`
	Email       string       `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty" validate:"max=50"`
	Notes       string       `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Type        *CustomerType `json:"type,omitempty"`
	FullName    *string       `json:"fullName,omitempty" validate:"omitempty,max=150"`
	CompanyName *string       `json:"companyName,omitempty" validate:"omitempty,max=200"`
	TaxNumber   *string       `json:"taxNumber,omitempty" validate:"omitempty,max=20"`
	TaxOffice   *string       `json:"taxOffice,omitempty" validate:"omitempty,max=100"`
	Phone       *string       `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email       *string       `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address     *string       `json:"address,omitempty"`
	City        *string       `json:"city,omitempty" validate:"omitempty,max=50"`
	Notes       *string       `json:"notes,omitempty"`
}

// Vehicle request DTOs

type CreateVehicleRequest struct {
	CustomerID           uint             `json:"customerId" validate:"required"`
	PlateNumber          string           `json:"plateNumber" validate:"required,max=15"`
	Brand                string           `json:"brand" validate:"required,max=50"`
	Model                string           `json:"model" validate:"required,max=50"`
	Year                 *int             `json:"year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	FuelType             FuelType         `json:"fuelType,omitempty"`
	TransmissionType     TransmissionType `json:"transmissionType,omitempty"`
	ChassisNumber        string           `json:"chassisNumber,omitempty" validate:"max=30"`
	EngineNumber         string           `json:"engineNumber,omitempty" validate:"max=30"`
	CurrentKM            *int             `json:"currentKm,omitempty" validate:"omitempty,gte=0"`
	InspectionExpiryDate *time.Time       `json:"inspectionExpiryDate,omitempty"`
	InsuranceExpiryDate  *time.Time       `json:"insuranceExpiryDate,omitempty"`
	Notes                string           `json:"notes,omitempty"`
}

type UpdateVehicleRequest struct {
	CustomerID           *uint             `json:"customerId,omitempty"`
	PlateNumber          *string           `json:"plateNumber,omitempty" validate:"omitempty,max=15"`
	Brand                *string           `json:"brand,omitempty" validate:"omitempty,max=50"`
	Model                *string           `json:"model,omitempty" validate:"omitempty,max=50"`
	Year                 *int              `json:"year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	FuelType             *FuelType         `json:"fuelType,omitempty"`
	TransmissionType     *TransmissionType `json:"transmissionType,omitempty"`
	ChassisNumber        *string           `json:"chassisNumber,omitempty" validate:"omitempty,max=30"`
	EngineNumber         *string           `json:"engineNumber,omitempty" validate:"omitempty,max=30"`
	CurrentKM            *int              `json:"currentKm,omitempty" validate:"omitempty,gte=0"`
	InspectionExpiryDate *time.Time        `json:"inspectionExpiryDate,omitempty"`
	InsuranceExpiryDate  *time.Time        `json:"insuranceExpiryDate,omitempty"`
	Notes                *string           `json:"notes,omitempty"`
}

// Work order request DTOs

type CreateWorkOrderRequest struct {
	VehicleID            uint                         `json:"vehicleId" validate:"required"`
	TechnicianID         *uint                        `json:"technicianId,omitempty"`
	ComplaintDescription string                       `json:"complaintDescription,omitempty"`
	KMIn                 *int                         `json:"kmIn,omitempty" validate:"omitempty,gte=0"`
	FuelLevel            string                       `json:"fuelLevel,omitempty" validate:"max=20"`
	Items                []CreateWorkOrderItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

type UpdateWorkOrderRequest struct {
	TechnicianID         *uint   `json:"technicianId,omitempty"`
	ComplaintDescription *string `json:"complaintDescription,omitempty"`
	InternalNotes        *string `json:"internalNotes,omitempty"`
	KMIn                 *int    `json:"kmIn,omitempty" validate:"omitempty,gte=0"`
	KMOut                *int    `json:"kmOut,omitempty" validate:"omitempty,gte=0"`
	FuelLevel            *string `json:"fuelLevel,omitempty" validate:"omitempty,max=20"`
}

type ChangeWorkOrderStatusRequest struct {
	Status WorkOrderStatus `json:"status" validate:"required"`
}

// AllowedTransitionsResponse lists the statuses reachable from the current one
type AllowedTransitionsResponse struct {
	CurrentStatus      WorkOrderStatus   `json:"currentStatus"`
	AllowedTransitions []WorkOrderStatus `json:"allowedTransitions"`
}

// Work order item request DTOs

type CreateWorkOrderItemRequest struct {
	Type        WorkOrderItemType `json:"type" validate:"required"`
	PartID      *uint             `json:"partId,omitempty"`
	Description string            `json:"description" validate:"required,max=300"`
	Quantity    decimal.Decimal   `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal   `json:"unitPrice"`
	Discount    decimal.Decimal   `json:"discount"`
	VATRate     *decimal.Decimal  `json:"vatRate,omitempty"`
}

type UpdateWorkOrderItemRequest struct {
	Description *string          `json:"description,omitempty" validate:"omitempty,max=300"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	VATRate     *decimal.Decimal `json:"vatRate,omitempty"`
}

// Part request DTOs

type CreatePartRequest struct {
	StockCode     string          `json:"stockCode" validate:"required,max=50"`
	Name          string          `json:"name" validate:"required,max=200"`
	Category      string          `json:"category,omitempty" validate:"max=100"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	CriticalLevel int             `json:"criticalLevel" validate:"gte=0"`
	SupplierName  string          `json:"supplierName,omitempty" validate:"max=200"`
}

type UpdatePartRequest struct {
	StockCode     *string          `json:"stockCode,omitempty" validate:"omitempty,max=50"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
	CriticalLevel *int             `json:"criticalLevel,omitempty" validate:"omitempty,gte=0"`
	SupplierName  *string          `json:"supplierName,omitempty" validate:"omitempty,max=200"`
	IsActive      *bool            `json:"isActive,omitempty"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// Payment request DTOs

type CreatePaymentRequest struct {
	WorkOrderID     uint            `json:"workOrderId" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty" validate:"max=100"`
}

// Invoice request DTOs

type CreateInvoiceRequest struct {
	WorkOrderID uint       `json:"workOrderId" validate:"required"`
	IssueDate   *time.Time `json:"issueDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type UpdateInvoiceStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required"`
}

// PaymentSummaryResponse reports settlement progress for a work order
type PaymentSummaryResponse struct {
	WorkOrderID uint            `json:"workOrderId"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      PaymentStatus   `json:"status"`
}

// AuditLogEntry is the read model for an audit record with decoded changes
type AuditLogEntry struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"userId"`
	EntityName string                 `json:"entityName"`
	EntityID   uint                   `json:"entityId"`
	Action     AuditAction            `json:"action"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// FieldChange captures a single field's before and after values
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Dashboard DTOs

type DashboardStats struct {
	ActiveWorkOrders    int64           `json:"activeWorkOrders"`
	CompletedThisMonth  int64           `json:"completedThisMonth"`
	RevenueThisMonth    decimal.Decimal `json:"revenueThisMonth"`
	RevenueToday        decimal.Decimal `json:"revenueToday"`
	UnpaidInvoices      int64           `json:"unpaidInvoices"`
	CriticalStockParts  int64           `json:"criticalStockParts"`
	TotalCustomers      int64           `json:"totalCustomers"`
	TotalVehicles       int64           `json:"totalVehicles"`
	VehiclesInShop      int64           `json:"vehiclesInShop"`
}

// Report DTOs

type RevenueReport struct {
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	OrderCount   int             `json:"orderCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Orders       []WorkOrder     `json:"orders"`
}

type TechnicianPerformance struct {
	TechnicianID    uint            `json:"technicianId"`
	FullName        string          `json:"fullName"`
	CompletedOrders int             `json:"completedOrders"`
	Revenue         decimal.Decimal `json:"revenue"`
}

type VehicleServiceCount struct {
	VehicleID   uint   `json:"vehicleId"`
	PlateNumber string `json:"plateNumber"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	OrderCount  int64  `json:"orderCount"`
}

type PartUsage struct {
	PartID    uint            `json:"partId"`
	StockCode string          `json:"stockCode"`
	Name      string          `json:"name"`
	TotalUsed decimal.Decimal `json:"totalUsed"`
}

type CustomerDebt struct {
	CustomerID uint            `json:"customerId"`
	FullName   string          `json:"fullName"`
	Billed     decimal.Decimal `json:"billed"`
	Paid       decimal.Decimal `json:"paid"`
	Debt       decimal.Decimal `json:"debt"`
}

type StatusCount struct {
	Status WorkOrderStatus `json:"status"`
	Count  int64           `json:"count"`
}
