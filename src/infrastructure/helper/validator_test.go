package helper

import (
	"errors"
	"testing"

	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Message string `validate:"required"`
	Delay   int    `validate:"gte=0"`
	Filter  string `validate:"oneof=all inactive"`
}

func TestGetErrorMsg(t *testing.T) {
	h := NewValidator(logger.NewNopLogger())
	err := validator.New().Struct(sample{Delay: -1, Filter: "vip"})

	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))

	msgs := map[string]string{}
	for _, fe := range ve {
		msgs[fe.Field()] = h.GetErrorMsg(fe)
	}
	assert.Equal(t, "This field is required", msgs["Message"])
	assert.Equal(t, "Should be greater than or equal to 0", msgs["Delay"])
	assert.Equal(t, "Should be one of: all, inactive", msgs["Filter"])
}
