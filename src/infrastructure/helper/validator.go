package helper

import (
	"fmt"
	"strings"

	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Validator interface {
	GetErrorMsg(fe validator.FieldError) string
}

type validatorHelper struct {
	Logger *logger.Logger
}

// NewValidator registers the custom binding tags on gin's validator engine.
func NewValidator(loggerInstance *logger.Logger) Validator {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return utils.IsPhoneNumber(fl.Field().String())
		}); err != nil {
			loggerInstance.Error("Couldn't register phone validation", zap.Error(err))
		}
	}
	return &validatorHelper{Logger: loggerInstance}
}

func (v *validatorHelper) GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "lte", "max":
		return fmt.Sprintf("Should be less than or equal to %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("Should be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Should be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "Should be a valid URL"
	case "datetime":
		return fmt.Sprintf("Should match the format %s", fe.Param())
	case "phone":
		return "Should be a valid phone number"
	case "required_if":
		return "This field is required for the selected option"
	}
	return "Unknown error"
}
