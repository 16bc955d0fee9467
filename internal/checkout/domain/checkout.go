package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageShipping   Stage = "shipping"
	StagePayment    Stage = "payment"
	StageReview     Stage = "review"
	StageSubmitting Stage = "submitting"
	StageSuccess    Stage = "success"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

func (m ShippingMethod) Cost() int64 {
	if m == ShippingExpress {
		return ExpressShippingCost
	}
	return StandardShippingCost
}

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCOD      PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentTransfer, PaymentCOD:
		return true
	}
	return false
}

var (
	ErrWrongStage            = errors.New("checkout is not at that step")
	ErrSubmissionInFlight    = errors.New("order submission already in progress")
	ErrInvalidShippingMethod = errors.New("invalid shipping method")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrIncompleteShipping    = errors.New("shipping details incomplete")
)

type ShippingDetails struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zipCode"`
}

// FormattedAddress renders "<address>, <city>, <state> <zip>".
func (d ShippingDetails) FormattedAddress() string {
	addr := fmt.Sprintf("%s, %s, %s", d.Address, d.City, d.State)
	if zip := strings.TrimSpace(d.ZipCode); zip != "" {
		addr += " " + zip
	}
	return addr
}

// Session is the state of one checkout. Stage only ever moves along
// shipping -> payment -> review -> submitting -> success, with Back stepping
// one stage earlier and a failed submission returning to review.
type Session struct {
	Stage          Stage           `json:"stage"`
	Shipping       ShippingDetails `json:"shipping"`
	ShippingMethod ShippingMethod  `json:"shippingMethod"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	AttemptID      string          `json:"attemptId,omitempty"`
	LastError      string          `json:"lastError,omitempty"`
	OrderID        string          `json:"orderId,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func NewSession(name, email string, now time.Time) *Session {
	return &Session{
		Stage:          StageShipping,
		Shipping:       ShippingDetails{FullName: name, Email: email},
		ShippingMethod: ShippingStandard,
		PaymentMethod:  PaymentCard,
		UpdatedAt:      now,
	}
}

// SubmitShipping expects details already checked by the caller's validator;
// it only re-checks the fields the address and receipt cannot do without.
func (s *Session) SubmitShipping(d ShippingDetails, method ShippingMethod, now time.Time) error {
	if s.Stage != StageShipping {
		return ErrWrongStage
	}
	if method == "" {
		method = ShippingStandard
	}
	if !method.Valid() {
		return ErrInvalidShippingMethod
	}
	if missing := d.missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteShipping, strings.Join(missing, ", "))
	}
	s.Shipping = d
	s.ShippingMethod = method
	s.Stage = StagePayment
	s.LastError = ""
	s.UpdatedAt = now
	return nil
}

func (s *Session) SelectPayment(method PaymentMethod, now time.Time) error {
	if s.Stage != StagePayment {
		return ErrWrongStage
	}
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	s.PaymentMethod = method
	s.Stage = StageReview
	s.UpdatedAt = now
	return nil
}

func (s *Session) Back(now time.Time) error {
	switch s.Stage {
	case StageReview:
		s.Stage = StagePayment
	case StagePayment:
		s.Stage = StageShipping
	case StageSubmitting:
		return ErrSubmissionInFlight
	default:
		return ErrWrongStage
	}
	s.UpdatedAt = now
	return nil
}

// BeginSubmit moves review to submitting and stamps a fresh attempt id.
func (s *Session) BeginSubmit(attemptID string, now time.Time) error {
	switch s.Stage {
	case StageReview:
	case StageSubmitting:
		return ErrSubmissionInFlight
	default:
		return ErrWrongStage
	}
	s.Stage = StageSubmitting
	s.AttemptID = attemptID
	s.LastError = ""
	s.UpdatedAt = now
	return nil
}

func (s *Session) Fail(reason string, now time.Time) {
	if s.Stage != StageSubmitting {
		return
	}
	s.Stage = StageReview
	s.LastError = reason
	s.UpdatedAt = now
}

// RecoverStale returns a submission that has been in flight longer than
// staleAfter to review, so a crashed request cannot wedge the checkout.
func (s *Session) RecoverStale(staleAfter time.Duration, now time.Time) bool {
	if s.Stage != StageSubmitting || now.Sub(s.UpdatedAt) < staleAfter {
		return false
	}
	s.Fail("previous submission did not complete", now)
	return true
}

func (s *Session) Succeed(orderID string, now time.Time) {
	s.Stage = StageSuccess
	s.OrderID = orderID
	s.LastError = ""
	s.UpdatedAt = now
}

func (s *Session) DeliveryNote() string {
	return fmt.Sprintf("Shipping: %s, Payment: %s", s.ShippingMethod, s.PaymentMethod)
}

func (d ShippingDetails) missing() []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"fullName", d.FullName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}
