package models

// PaymentStatus is the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

// TransitionSource names what triggered a payment status change.
type TransitionSource string

const (
	TransitionSourceCallback  TransitionSource = "callback"
	TransitionSourceReconcile TransitionSource = "reconcile"
	TransitionSourceRetry     TransitionSource = "retry"
	TransitionSourceCancel    TransitionSource = "cancel"
	TransitionSourceAdmin     TransitionSource = "admin"
)

type transitionRule struct {
	target  PaymentStatus
	sources []TransitionSource
}

var paymentTransitions = map[PaymentStatus][]transitionRule{
	PaymentStatusPending: {
		{target: PaymentStatusPaid, sources: []TransitionSource{TransitionSourceCallback, TransitionSourceReconcile}},
		{target: PaymentStatusFailed, sources: []TransitionSource{TransitionSourceCallback, TransitionSourceReconcile}},
		{target: PaymentStatusCancelled, sources: []TransitionSource{TransitionSourceCancel}},
	},
	PaymentStatusFailed: {
		{target: PaymentStatusPending, sources: []TransitionSource{TransitionSourceRetry}},
		{target: PaymentStatusCancelled, sources: []TransitionSource{TransitionSourceCancel}},
	},
	PaymentStatusPaid:      {},
	PaymentStatusCancelled: {},
}

// CanTransitionTo reports whether source may move a booking from s to target.
// Admin overrides may set any valid status other than the current one.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus, source TransitionSource) bool {
	if !target.IsValid() || s == target {
		return false
	}
	if source == TransitionSourceAdmin {
		return true
	}
	for _, rule := range paymentTransitions[s] {
		if rule.target != target {
			continue
		}
		for _, allowed := range rule.sources {
			if allowed == source {
				return true
			}
		}
	}
	return false
}
