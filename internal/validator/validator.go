// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stockdesk/internal/models"
	"stockdesk/internal/session"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("shift", validateShift)
		_ = v.RegisterValidation("ppe_unit", validatePPEUnit)
		_ = v.RegisterValidation("cut_status", validateCutStatus)
		_ = v.RegisterValidation("terminal_status", validateTerminalStatus)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("monitoring_field", validateMonitoringField)
	}
}

func validateShift(fl validator.FieldLevel) bool {
	return models.ValidShift(strings.TrimSpace(fl.Field().String()))
}

func validatePPEUnit(fl validator.FieldLevel) bool {
	switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
	case models.UnitPairs, models.UnitUnits:
		return true
	}
	return false
}

func cutStatus(fl validator.FieldLevel) models.CutPasswordStatus {
	return models.CutPasswordStatus(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validateCutStatus(fl validator.FieldLevel) bool {
	return cutStatus(fl).Valid()
}

func validateTerminalStatus(fl validator.FieldLevel) bool {
	return cutStatus(fl).Terminal()
}

// validateRole accepts the current role names and the legacy spellings.
func validateRole(fl validator.FieldLevel) bool {
	_, ok := session.ParseRole(fl.Field().String())
	return ok
}

func validateMonitoringField(fl validator.FieldLevel) bool {
	_, ok := models.MonitoringFields[strings.ToLower(fl.Field().String())]
	return ok
}
