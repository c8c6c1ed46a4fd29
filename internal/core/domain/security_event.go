package domain

import (
	"errors"
	"time"
)

var ErrRateLimited = errors.New("rate limited")
var ErrCSRFRejected = errors.New("csrf token rejected")

// ErrStoreUnavailable marks a transient backing-store failure. Callers may
// retry with bounded backoff; it is never a business rejection.
var ErrStoreUnavailable = errors.New("backing store unavailable")

// SecurityEventType classifies a security-relevant occurrence.
type SecurityEventType string

const (
	EventRegister        SecurityEventType = "register"
	EventLogin           SecurityEventType = "login"
	EventLoginFailed     SecurityEventType = "login_failed"
	EventBootstrap       SecurityEventType = "bootstrap"
	EventBootstrapDenied SecurityEventType = "bootstrap_denied"
	EventRoleChange      SecurityEventType = "role_change"
	EventPayoutOverride  SecurityEventType = "payout_override"
	EventTradeOverride   SecurityEventType = "trade_override"
	EventCSRFRejected    SecurityEventType = "csrf_rejected"
	EventDeposit         SecurityEventType = "deposit"
	EventWithdrawal      SecurityEventType = "withdrawal"
)

// SecurityEventStatus is the outcome recorded with an event.
type SecurityEventStatus string

const (
	EventOK     SecurityEventStatus = "ok"
	EventDenied SecurityEventStatus = "denied"
)

// SecurityEvent is one append-only audit record. Events reference actors
// by id only and are never mutated or deleted.
type SecurityEvent struct {
	ID        string              `json:"id" bson:"_id"`
	Type      SecurityEventType   `json:"type" bson:"type"`
	Status    SecurityEventStatus `json:"status" bson:"status"`
	ActorID   string              `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	IP        string              `json:"ip,omitempty" bson:"ip,omitempty"`
	Details   string              `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}
