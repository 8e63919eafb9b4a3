package lib

import (
	"context"
	"errors"
	"log"

	appconfig "workerlink/src/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

var snsClient *sns.Client

func GetSNSClient() *sns.Client {
	if snsClient != nil {
		return snsClient
	}
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Failed to initialize SNS client: %s\n", err.Error())
		return nil
	}
	client := sns.NewFromConfig(cfg)
	snsClient = client
	return client
}

// NewSNSClient Replace SNS instance with custom client implementation
func NewSNSClient(c *sns.Client) *sns.Client {
	snsClient = c
	return snsClient
}

// PublishSMS sends one transactional SMS to an E.164 phone number. The
// caller owns the context deadline; a stalled provider call must not pin
// a request slot.
func PublishSMS(ctx context.Context, phone string, message string) error {
	client := GetSNSClient()
	if client == nil {
		return errors.New("SNS client is not available")
	}
	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if appconfig.SMS_SENDER != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(appconfig.SMS_SENDER),
		}
	}
	_, err := client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		log.Printf("[SMS] Error publishing to %s: %s\n", phone, err.Error())
		return err
	}
	return nil
}
