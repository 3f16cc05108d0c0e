package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "restaurant-crm-api/src/domain/errors"
	"restaurant-crm-api/src/infrastructure/ai"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

type CampaignType string

const (
	TypeBirthday  CampaignType = "birthday"
	TypeWelcome   CampaignType = "welcome"
	TypeWinback   CampaignType = "winback"
	TypePromotion CampaignType = "promotion"
	TypeLoyalty   CampaignType = "loyalty"
)

const systemPrompt = "You are a restaurant marketing specialist. Write short (160 characters maximum), engaging and personalized WhatsApp messages."

const defaultPromotion = "a special promotion"

var prompts = map[CampaignType]string{
	TypeBirthday:  "Write a warm, personalized birthday message for %s. Include a special birthday discount. Be friendly and celebratory.",
	TypeWelcome:   "Write a welcome message for %s, a new customer. Explain the loyalty program and offer a first-order discount.",
	TypeWinback:   "Write a message to re-engage %s, who has not ordered in a while. Be empathetic and offer an attractive incentive to come back.",
	TypePromotion: "Write an exciting promotional message for %s about: %s. Highlight the benefits and create a sense of urgency.",
	TypeLoyalty:   "Write a message thanking %s for their loyalty. Mention their order history and offer an exclusive reward.",
}

type DraftRequest struct {
	CampaignType CampaignType
	CustomerName string
	Promotion    string
}

type IDraftUseCase interface {
	Generate(ctx context.Context, req *DraftRequest) (string, error)
}

type DraftUseCase struct {
	completer ai.CompleterInterface
	Logger    *logger.Logger
}

func NewDraftUseCase(completer ai.CompleterInterface, loggerInstance *logger.Logger) IDraftUseCase {
	return &DraftUseCase{completer: completer, Logger: loggerInstance}
}

// Prompt builds the user prompt; unknown campaign types fall back to a promotion.
func Prompt(req *DraftRequest) string {
	name := strings.TrimSpace(req.CustomerName)
	switch req.CampaignType {
	case TypeBirthday, TypeWelcome, TypeWinback, TypeLoyalty:
		return fmt.Sprintf(prompts[req.CampaignType], name)
	}
	promotion := strings.TrimSpace(req.Promotion)
	if promotion == "" {
		promotion = defaultPromotion
	}
	return fmt.Sprintf(prompts[TypePromotion], name, promotion)
}

func (d *DraftUseCase) Generate(ctx context.Context, req *DraftRequest) (string, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return "", domainErrors.NewAppError(errors.New("customer_name is required"), domainErrors.ValidationError)
	}
	message, err := d.completer.Complete(ctx, &ai.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   Prompt(req),
	})
	if err != nil {
		d.Logger.Error("Error generating draft", zap.Error(err), zap.String("campaignType", string(req.CampaignType)))
		return "", err
	}
	return message, nil
}
