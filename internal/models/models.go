package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Society struct {
	ID                 string     `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Address            string     `db:"address" json:"address"`
	City               string     `db:"city" json:"city"`
	State              string     `db:"state" json:"state"`
	Zipcode            string     `db:"zipcode" json:"zipcode"`
	Country            string     `db:"country" json:"country"`
	ContactEmail       *string    `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone       *string    `db:"contact_phone" json:"contact_phone,omitempty"`
	RegistrationNumber *string    `db:"registration_number" json:"registration_number,omitempty"`
	RegistrationDate   *time.Time `db:"registration_date" json:"registration_date,omitempty"`
	TotalUnits         int        `db:"total_units" json:"total_units"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type Resident struct {
	ID                string     `db:"id" json:"id"`
	SocietyID         string     `db:"society_id" json:"society_id"`
	FirstName         string     `db:"first_name" json:"first_name"`
	LastName          string     `db:"last_name" json:"last_name"`
	Email             *string    `db:"email" json:"email,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	UnitNumber        string     `db:"unit_number" json:"unit_number"`
	IsOwner           bool       `db:"is_owner" json:"is_owner"`
	IsCommitteeMember bool       `db:"is_committee_member" json:"is_committee_member"`
	CommitteeRole     *string    `db:"committee_role" json:"committee_role,omitempty"`
	MoveInDate        *time.Time `db:"move_in_date" json:"move_in_date,omitempty"`
	MoveOutDate       *time.Time `db:"move_out_date" json:"move_out_date,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	RoleID       string     `db:"role_id" json:"role_id"`
	ResidentID   *string    `db:"resident_id" json:"resident_id,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Role struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Permission struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	ResourceType string    `db:"resource_type" json:"resource_type"`
	Action       string    `db:"action" json:"action"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type RolePermission struct {
	ID           string    `db:"id" json:"id"`
	RoleID       string    `db:"role_id" json:"role_id"`
	PermissionID string    `db:"permission_id" json:"permission_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type SocietyAdmin struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	SocietyID      string    `db:"society_id" json:"society_id"`
	IsPrimaryAdmin bool      `db:"is_primary_admin" json:"is_primary_admin"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type ResidentFinance struct {
	ID              string          `db:"id" json:"id"`
	ResidentID      string          `db:"resident_id" json:"resident_id"`
	TransactionType string          `db:"transaction_type" json:"transaction_type"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Currency        string          `db:"currency" json:"currency"`
	DueDate         *time.Time      `db:"due_date" json:"due_date,omitempty"`
	PaymentDate     *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	PaymentMethod   *string         `db:"payment_method" json:"payment_method,omitempty"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	Description     *string         `db:"description" json:"description,omitempty"`
	InvoiceNumber   *string         `db:"invoice_number" json:"invoice_number,omitempty"`
	ReceiptNumber   *string         `db:"receipt_number" json:"receipt_number,omitempty"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

type SocietyFinance struct {
	ID                 string          `db:"id" json:"id"`
	SocietyID          string          `db:"society_id" json:"society_id"`
	ExpenseType        string          `db:"expense_type" json:"expense_type"`
	Category           string          `db:"category" json:"category"`
	VendorName         *string         `db:"vendor_name" json:"vendor_name,omitempty"`
	ExpenseDate        time.Time       `db:"expense_date" json:"expense_date"`
	Amount             decimal.Decimal `db:"amount" json:"amount"`
	Currency           string          `db:"currency" json:"currency"`
	PaymentStatus      string          `db:"payment_status" json:"payment_status"`
	PaymentDate        *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	PaymentMethod      *string         `db:"payment_method" json:"payment_method,omitempty"`
	InvoiceNumber      *string         `db:"invoice_number" json:"invoice_number,omitempty"`
	ReceiptNumber      *string         `db:"receipt_number" json:"receipt_number,omitempty"`
	Description        *string         `db:"description" json:"description,omitempty"`
	Recurring          bool            `db:"recurring" json:"recurring"`
	RecurringFrequency *string         `db:"recurring_frequency" json:"recurring_frequency,omitempty"`
	NextDueDate        *time.Time      `db:"next_due_date" json:"next_due_date,omitempty"`
	IsActive           bool            `db:"is_active" json:"is_active"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}
