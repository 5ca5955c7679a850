package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint/types"
)

// PinpointConfig configures the AWS Pinpoint provider. Empty keys fall back
// to the default AWS credential chain.
type PinpointConfig struct {
	ApplicationID string
	Region        string
	AccessKey     string
	SecretKey     string
	SenderID      string
	// MessageType is TRANSACTIONAL or PROMOTIONAL.
	MessageType string
	EntityID    string
	TemplateID  string
	Timeout     time.Duration
}

type pinpointAPI interface {
	SendMessages(ctx context.Context, in *pinpoint.SendMessagesInput, optFns ...func(*pinpoint.Options)) (*pinpoint.SendMessagesOutput, error)
}

// Pinpoint sends SMS through AWS Pinpoint.
type Pinpoint struct {
	cfg    PinpointConfig
	client pinpointAPI
}

// NewPinpoint validates cfg and builds a Pinpoint client.
func NewPinpoint(ctx context.Context, cfg PinpointConfig) (*Pinpoint, error) {
	if cfg.ApplicationID == "" {
		return nil, errors.New("sms: pinpoint application_id is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("sms: pinpoint region is required")
	}
	if cfg.MessageType == "" {
		cfg.MessageType = string(types.MessageTypeTransactional)
	}
	if cfg.MessageType != string(types.MessageTypeTransactional) && cfg.MessageType != string(types.MessageTypePromotional) {
		return nil, errors.New("sms: pinpoint message_type must be TRANSACTIONAL or PROMOTIONAL")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: defaultTimeout(cfg.Timeout)}),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Pinpoint{cfg: cfg, client: pinpoint.NewFromConfig(awsCfg)}, nil
}

func (*Pinpoint) Name() string { return "pinpoint" }

// Send sends msg and maps the per-address delivery status to an error.
func (p *Pinpoint) Send(ctx context.Context, msg Message) (string, error) {
	sms := &types.SMSMessage{
		Body:        aws.String(msg.Body),
		MessageType: types.MessageType(p.cfg.MessageType),
	}
	if p.cfg.SenderID != "" {
		sms.SenderId = aws.String(p.cfg.SenderID)
	}
	if p.cfg.EntityID != "" {
		sms.EntityId = aws.String(p.cfg.EntityID)
	}
	if p.cfg.TemplateID != "" {
		sms.TemplateId = aws.String(p.cfg.TemplateID)
	}

	in := &pinpoint.SendMessagesInput{
		ApplicationId: aws.String(p.cfg.ApplicationID),
		MessageRequest: &types.MessageRequest{
			Addresses: map[string]types.AddressConfiguration{
				msg.To: {ChannelType: types.ChannelTypeSms},
			},
			MessageConfiguration: &types.DirectMessageConfiguration{SMSMessage: sms},
		},
	}
	if msg.Reference != "" {
		in.MessageRequest.TraceId = aws.String(msg.Reference)
	}

	out, err := p.client.SendMessages(ctx, in)
	if err != nil {
		return "", err
	}
	if out == nil || out.MessageResponse == nil {
		return "", errors.New("sms: pinpoint returned an empty response")
	}

	res, ok := out.MessageResponse.Result[msg.To]
	if !ok {
		return "", errors.New("sms: pinpoint returned no result for recipient")
	}

	id := aws.ToString(res.MessageId)
	switch res.DeliveryStatus {
	case types.DeliveryStatusSuccessful, types.DeliveryStatusDuplicate:
		return id, nil
	case types.DeliveryStatusPermanentFailure, types.DeliveryStatusOptOut:
		return id, fmt.Errorf("%w: %s %s", ErrPermanent, res.DeliveryStatus, aws.ToString(res.StatusMessage))
	default:
		return id, fmt.Errorf("sms: pinpoint delivery %s: %s", res.DeliveryStatus, aws.ToString(res.StatusMessage))
	}
}
