package draft

import (
	"context"
	"testing"

	domainErrors "restaurant-crm-api/src/domain/errors"
	"restaurant-crm-api/src/infrastructure/ai"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	completeFunc func(*ai.CompletionRequest) (string, error)
}

func (m *mockCompleter) Complete(_ context.Context, req *ai.CompletionRequest) (string, error) {
	return m.completeFunc(req)
}

func TestPrompt(t *testing.T) {
	assert.Contains(t, Prompt(&DraftRequest{CampaignType: TypeBirthday, CustomerName: "Ana"}), "birthday message for Ana")
	assert.Contains(t, Prompt(&DraftRequest{CampaignType: TypeWinback, CustomerName: "Ana"}), "re-engage Ana")
	assert.Contains(t, Prompt(&DraftRequest{CampaignType: TypePromotion, CustomerName: "Ana", Promotion: "2-for-1 pizza"}), "about: 2-for-1 pizza")
	assert.Contains(t, Prompt(&DraftRequest{CampaignType: "unknown", CustomerName: "Ana"}), "about: a special promotion")
}

func TestGenerate(t *testing.T) {
	var got *ai.CompletionRequest
	uc := NewDraftUseCase(&mockCompleter{completeFunc: func(req *ai.CompletionRequest) (string, error) {
		got = req
		return "Happy birthday Ana! 20% off today.", nil
	}}, logger.NewNopLogger())

	msg, err := uc.Generate(context.Background(), &DraftRequest{CampaignType: TypeBirthday, CustomerName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Happy birthday Ana! 20% off today.", msg)
	assert.Contains(t, got.SystemPrompt, "160 characters")
}

func TestGenerateErrors(t *testing.T) {
	uc := NewDraftUseCase(&mockCompleter{completeFunc: func(*ai.CompletionRequest) (string, error) {
		return "", domainErrors.NewAppErrorWithType(domainErrors.ServiceUnavailable)
	}}, logger.NewNopLogger())

	_, err := uc.Generate(context.Background(), &DraftRequest{CampaignType: TypeWelcome})
	assert.True(t, domainErrors.IsType(err, domainErrors.ValidationError))

	_, err = uc.Generate(context.Background(), &DraftRequest{CampaignType: TypeWelcome, CustomerName: "Bea"})
	assert.True(t, domainErrors.IsType(err, domainErrors.ServiceUnavailable))
}
