package subscription

import "github.com/gofiber/fiber/v2"

// Error is a domain error with a stable machine-readable code and an HTTP
// status class. Internal causes never leak into Message.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches by code so callers can compare against the predeclared errors
// even when the message was customized.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrPlanNotFound         = &Error{Code: "plan_not_found", Status: fiber.StatusNotFound, Message: "Plan not found"}
	ErrSubscriptionNotFound = &Error{Code: "subscription_not_found", Status: fiber.StatusNotFound, Message: "Subscription not found"}
	ErrAlreadySubscribed    = &Error{Code: "subscription_exists", Status: fiber.StatusConflict, Message: "Business already has a current subscription"}
	ErrInvalidTransition    = &Error{Code: "invalid_state_transition", Status: fiber.StatusConflict, Message: "Subscription state does not allow this operation"}
	ErrDowngradeBlocked     = &Error{Code: "downgrade_blocked", Status: fiber.StatusConflict, Message: "Current usage exceeds the target plan's limits"}
	ErrInvalidPaymentMethod = &Error{Code: "invalid_payment_method", Status: fiber.StatusBadRequest, Message: "Payment method is missing or does not belong to this business"}
	ErrPaymentFailed        = &Error{Code: "payment_failed", Status: fiber.StatusBadRequest, Message: "Payment was declined"}
)

// newValidationError builds a 400-class error for malformed input.
func newValidationError(message string) *Error {
	return &Error{Code: "validation_error", Status: fiber.StatusBadRequest, Message: message}
}

// withMessage copies a predeclared error with a more specific message while
// keeping its code and status, so errors.Is still matches.
func withMessage(base *Error, message string) *Error {
	return &Error{Code: base.Code, Status: base.Status, Message: message}
}
