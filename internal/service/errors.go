package service

import (
	"errors"
	"fmt"

	"github.com/otoservis/garage-api/internal/domain"
)

// Common service errors
var (
	// ErrCustomerNotFound is returned when a customer does not exist or is deleted
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrVehicleNotFound is returned when a vehicle does not exist or is deleted
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrWorkOrderNotFound is returned when a work order does not exist or is deleted
	ErrWorkOrderNotFound = errors.New("work order not found")

	// ErrWorkOrderItemNotFound is returned when a work order item does not exist
	ErrWorkOrderItemNotFound = errors.New("work order item not found")

	// ErrPartNotFound is returned when a part does not exist
	ErrPartNotFound = errors.New("part not found")

	// ErrPaymentNotFound is returned when a payment does not exist
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvoiceNotFound is returned when an invoice does not exist
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrPhotoNotFound is returned when a work order photo does not exist
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrInvoiceExists is returned when the work order already has an invoice
	ErrInvoiceExists = errors.New("work order already has an invoice")

	// ErrDuplicatePlate is returned when the plate number is already registered
	ErrDuplicatePlate = errors.New("plate number already registered")

	// ErrDuplicateStockCode is returned when the stock code is already in use
	ErrDuplicateStockCode = errors.New("stock code already in use")

	// ErrDuplicateUsername is returned when the username is already taken
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserInactive is returned when a disabled account attempts to log in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrOrderLocked is returned when mutating items on a terminal work order
	ErrOrderLocked = errors.New("work order no longer accepts changes")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidTransitionError is returned when a work order status change is not
// allowed by the lifecycle graph
type InvalidTransitionError struct {
	From domain.WorkOrderStatus
	To   domain.WorkOrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// StorageError wraps an unexpected database failure with the operation name
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
