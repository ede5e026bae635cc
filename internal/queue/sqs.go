package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"

	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/persistence"
	"github.com/volari/license-quoter/internal/pricing"
)

// EventQuoteSaved is the type of the message sent when a quote enters history
const EventQuoteSaved = "quote.saved"

// QuoteSavedEvent is the message body published for a saved quote
type QuoteSavedEvent struct {
	Type      string               `json:"type"`
	SessionID string               `json:"sessionId"`
	HistoryID int64                `json:"historyId"`
	Name      string               `json:"name"`
	ItemCount int                  `json:"itemCount"`
	Total     float64              `json:"total"`
	Currency  pricing.CurrencyMode `json:"currency"`
	Items     []pricing.LineItem   `json:"items"`
	SavedAt   time.Time            `json:"savedAt"`
}

// Client publishes quote events to an SQS queue
type Client struct {
	svc      sqsiface.SQSAPI
	queueURL string
}

// NewClient creates a new SQS client
func NewClient(region, endpoint, queueURL string) (*Client, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	// Override endpoint for local testing
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.ErrQueueOperation("session", err)
	}

	return NewClientWithAPI(sqs.New(sess), queueURL), nil
}

// NewClientWithAPI wraps an existing SQS API client
func NewClientWithAPI(svc sqsiface.SQSAPI, queueURL string) *Client {
	return &Client{svc: svc, queueURL: queueURL}
}

// QuoteSaved publishes saved to the queue
func (c *Client) QuoteSaved(ctx context.Context, sessionID string, saved persistence.SavedQuote) error {
	event := QuoteSavedEvent{
		Type:      EventQuoteSaved,
		SessionID: sessionID,
		HistoryID: saved.ID,
		Name:      saved.Name,
		ItemCount: saved.ItemCount,
		Total:     saved.Total,
		Currency:  pricing.ModeOrigin,
		Items:     saved.Items,
		SavedAt:   saved.Timestamp,
	}
	if len(saved.Items) > 0 {
		event.Currency = saved.Items[0].Currency
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal quote event", logger.Fields{"error": err.Error()})
		return errors.ErrQueueOperation("marshal", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"EventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(EventQuoteSaved),
			},
			"Currency": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Currency)),
			},
		},
	}

	result, err := c.svc.SendMessageWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to send quote event", logger.Fields{
			"error":      err.Error(),
			"history_id": saved.ID,
		})
		return errors.ErrQueueOperation("send", err)
	}

	logger.Info("Quote event sent to queue", logger.Fields{
		"history_id": saved.ID,
		"message_id": aws.StringValue(result.MessageId),
	})
	return nil
}
