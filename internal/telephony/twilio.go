package telephony

import (
	"context"
	"fmt"

	"github.com/garasindo/voice-crm-service/pkg/logger"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioProvider places outbound calls through the Twilio REST API.
type TwilioProvider struct {
	client *twilio.RestClient
}

// NewTwilioProvider creates a Twilio-backed telephony provider.
func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

// PlaceCall places one outbound call leg and registers the greeting and
// status webhooks.
func (p *TwilioProvider) PlaceCall(_ context.Context, req PlaceCallRequest) (*PlaceCallResult, error) {
	params := &api.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetUrl(req.GreetingURL)
	params.SetMethod("POST")
	params.SetStatusCallback(req.StatusCallbackURL)
	params.SetStatusCallbackMethod("POST")
	if len(req.StatusEvents) > 0 {
		params.SetStatusCallbackEvent(req.StatusEvents)
	}

	resp, err := p.client.Api.CreateCall(params)
	if err != nil {
		return nil, fmt.Errorf("twilio create call: %w", err)
	}

	result := &PlaceCallResult{}
	if resp.Sid != nil {
		result.CallSID = *resp.Sid
	}
	if resp.Status != nil {
		result.Status = *resp.Status
	}
	logger.Base().Info("outbound call placed",
		zap.String("call_sid", result.CallSID),
		zap.String("status", result.Status))
	return result, nil
}
