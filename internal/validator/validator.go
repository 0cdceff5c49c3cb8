package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/septivank/mine-safety-console/internal/models"
)

// FillAllFieldsNotice is shown when a form is submitted with an empty field
const FillAllFieldsNotice = "لطفاً تمامی فیلدها را پر کنید"

// ValidationResult holds validation outcome
type ValidationResult struct {
	IsValid bool
	Reason  string
	// Missing lists the struct fields that failed the required check
	Missing []string
}

// Validator checks form submissions before anything is written
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateStatus validates a status form submission
func (v *Validator) ValidateStatus(entry models.StatusEntry) ValidationResult {
	return v.check(entry)
}

// ValidateAlert validates an alert form submission
func (v *Validator) ValidateAlert(entry models.AlertEntry) ValidationResult {
	return v.check(entry)
}

func (v *Validator) check(form interface{}) ValidationResult {
	err := v.validate.Struct(form)
	if err == nil {
		return ValidationResult{IsValid: true}
	}

	result := ValidationResult{IsValid: false, Reason: FillAllFieldsNotice}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			result.Missing = append(result.Missing, fe.Field())
		}
		return result
	}

	result.Reason = fmt.Sprintf("%s (%v)", FillAllFieldsNotice, err)
	return result
}
