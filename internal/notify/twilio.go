// Package notify sends the scheduled reminder digest by SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a text message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// MessageCreator is the part of the Twilio REST API the sender uses.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

var errNoSender = errors.New("twilio sender number is not configured")

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	api  MessageCreator
	from string
}

// NewTwilioSender creates a sender bound to the from number.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewTwilioSenderWithAPI(client.Api, from)
}

func NewTwilioSenderWithAPI(api MessageCreator, from string) *TwilioSender {
	return &TwilioSender{api: api, from: strings.TrimSpace(from)}
}

// Send ignores ctx once the request is issued; the Twilio client has no
// context support.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if s.from == "" {
		return errNoSender
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient number missing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message: %w", err)
	}
	return nil
}
