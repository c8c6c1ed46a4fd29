package domain

import (
	"errors"
	"time"
)

// Role is the closed set of actor roles in the platform.
type Role string

const (
	RoleTrader          Role = "trader"
	RoleAdmin           Role = "admin"
	RoleCustomerService Role = "customer_service"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrader, RoleAdmin, RoleCustomerService:
		return true
	}
	return false
}

// Capability names a privileged operation. Capabilities are checked
// centrally by the RBAC middleware before any handler or service runs.
type Capability string

const (
	CapPlaceTrade         Capability = "trade:place"
	CapOverrideTrade      Capability = "trade:override"
	CapSetPayout          Capability = "payout:set"
	CapChangeRole         Capability = "user:role"
	CapReadSecurityEvents Capability = "security:read"
)

// capabilities maps each role to the operations it may perform.
var capabilities = map[Role]map[Capability]bool{
	RoleTrader: {
		CapPlaceTrade: true,
	},
	RoleAdmin: {
		CapPlaceTrade:         true,
		CapOverrideTrade:      true,
		CapSetPayout:          true,
		CapChangeRole:         true,
		CapReadSecurityEvents: true,
	},
	RoleCustomerService: {
		CapOverrideTrade:      true,
		CapReadSecurityEvents: true,
	},
}

// Can reports whether the role grants the given capability.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// KYCStatus is a status flag only; the verification workflow lives outside
// this service.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrForbidden = errors.New("access forbidden")

// User models an authenticated actor. Users are never physically deleted;
// role and payout-override updates mutate in place.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	TwoFASecret  string    `json:"-" bson:"twofa_secret,omitempty"`
	Role         Role      `json:"role" bson:"role"`
	KYCStatus    KYCStatus `json:"kyc_status" bson:"kyc_status"`
	// PayoutOverridePct overrides the global default payout percentage
	// when non-nil. Changing it has no effect on trades already placed.
	PayoutOverridePct *int      `json:"payout_override_pct,omitempty" bson:"payout_override_pct,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}
