package send

type MessageRequest struct {
	CustomerID   int    `json:"customer_id" binding:"required,gt=0"`
	Message      string `json:"message" binding:"required,max=4096"`
	MediaURL     string `json:"media_url" binding:"omitempty,url"`
	TemplateName string `json:"template_name" binding:"max=100"`
}

type MessageResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	LogID     int    `json:"log_id"`
}

type HistoryRequest struct {
	CustomerID int `form:"customer_id" binding:"required,gt=0"`
	Limit      int `form:"limit" binding:"omitempty,gte=1,lte=200"`
}

type MessageLogResponse struct {
	ID               int    `json:"id"`
	CustomerID       int    `json:"customer_id"`
	CampaignID       *int   `json:"campaign_id,omitempty"`
	TemplateName     string `json:"template_name,omitempty"`
	Message          string `json:"message"`
	MediaURL         string `json:"media_url,omitempty"`
	Status           string `json:"status"`
	Via              string `json:"via"`
	GatewayMessageID string `json:"gateway_message_id,omitempty"`
	ErrorMessage     string `json:"error_message,omitempty"`
	SentAt           string `json:"sent_at"`
}
