package dto

import (
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("order_id", validateOrderID)
	}
}

// validateOrderID accepts a decimal integer in [0, MaxInt64].
func validateOrderID(fl validator.FieldLevel) bool {
	_, ok := ParseOrderID(fl.Field().String())
	return ok
}

// ParseOrderID parses an order id path segment. Signs and spaces are rejected.
func ParseOrderID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
