package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// now is replaced in tests.
var now = time.Now

// notPast accepts an empty value or a YYYY-MM-DD date that is today or later.
func notPast(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return false
	}
	return !utils.IsPastDate(d, now())
}

// hhmm accepts an empty value or a clock time.
func hhmm(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := utils.ParseClock(raw)
	return err == nil
}

// dateOnly accepts an empty value or a YYYY-MM-DD date.
func dateOnly(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := utils.ParseDate(raw)
	return err == nil
}

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	for tag, fn := range map[string]validator.Func{
		"notpast": notPast,
		"hhmm":    hhmm,
		"ymd":     dateOnly,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
