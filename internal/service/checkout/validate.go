package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
)

// ValidationErrors maps a field path to a human readable problem.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return validExpiry(fl.Field().String(), time.Now())
	})
	return v
}

// validExpiry accepts MM/YY for a month that has not ended yet.
func validExpiry(s string, now time.Time) bool {
	mm, yy, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || len(mm) != 2 || len(yy) != 2 {
		return false
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return false
	}
	endOfMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.Before(endOfMonth)
}

// Validate checks the data a step collects. Review validates both prior
// steps; confirmation has nothing to validate.
func Validate(step domain.CheckoutStep, draft domain.OrderDraft) error {
	errs := ValidationErrors{}
	switch step {
	case domain.StepShipping:
		validateShipping(draft.Shipping, errs)
	case domain.StepPayment:
		validatePayment(draft.Payment, errs)
	case domain.StepReview:
		validateShipping(draft.Shipping, errs)
		validatePayment(draft.Payment, errs)
	case domain.StepConfirmation:
	default:
		return fmt.Errorf("unknown step %q", step)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateShipping(info domain.ShippingInfo, errs ValidationErrors) {
	collect("shipping.", validate.Struct(info), errs)
}

func validatePayment(p *domain.Payment, errs ValidationErrors) {
	if p == nil {
		errs["payment.method"] = "is required"
		return
	}
	switch p.Method {
	case domain.PaymentCreditCard:
		if p.Card == nil {
			errs["payment.card"] = "is required"
			return
		}
		collect("payment.", validate.Struct(p.Card), errs)
	case domain.PaymentPayPal, domain.PaymentApplePay:
	default:
		errs["payment.method"] = fmt.Sprintf("unsupported method %q", p.Method)
	}
}

func collect(prefix string, err error, errs ValidationErrors) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[strings.TrimSuffix(prefix, ".")] = err.Error()
		return
	}
	for _, fe := range verrs {
		errs[prefix+fe.Field()] = describe(fe)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain digits only"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "expiry":
		return "must be a future MM/YY date"
	default:
		return "is invalid"
	}
}
