package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsAPI is the SNS operation used by SNSPager.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPager publishes on-call pages to an SNS topic. Subscribers (SMS,
// email, chat integrations) are managed on the topic, not here.
type SNSPager struct {
	client   snsAPI
	topicARN string
}

// NewSNSPager returns a pager publishing to topicARN.
func NewSNSPager(cfg aws.Config, topicARN string) *SNSPager {
	return newSNSPagerWithClient(sns.NewFromConfig(cfg), topicARN)
}

func newSNSPagerWithClient(client snsAPI, topicARN string) *SNSPager {
	return &SNSPager{client: client, topicARN: topicARN}
}

// Page publishes text with a "lead_kind" attribute so subscriptions can
// filter emergency traffic.
func (p *SNSPager) Page(ctx context.Context, subject, text string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(text),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"lead_kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String("emergency"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
