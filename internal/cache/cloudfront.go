package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"
)

// CloudFrontAPI is the subset of the CloudFront client used for purges.
type CloudFrontAPI interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// CloudFront purges the CDN distribution in front of community sites.
// CloudFront has no tag purge, so any tagged invalidation purges "/*".
type CloudFront struct {
	client         CloudFrontAPI
	distributionID string
	logger         *slog.Logger
}

var _ Invalidator = (*CloudFront)(nil)

// NewCloudFront creates a CDN invalidator for a distribution.
func NewCloudFront(client CloudFrontAPI, distributionID string, logger *slog.Logger) *CloudFront {
	return &CloudFront{client: client, distributionID: distributionID, logger: logger}
}

// InvalidateTags implements Invalidator.
func (c *CloudFront) InvalidateTags(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	out, err := c.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(c.distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(uuid.New().String()),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(1),
				Items:    []string{"/*"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create cloudfront invalidation: %w", err)
	}

	invalidationID := ""
	if out.Invalidation != nil {
		invalidationID = aws.ToString(out.Invalidation.Id)
	}
	c.logger.Debug("cloudfront invalidation created",
		"distribution_id", c.distributionID,
		"invalidation_id", invalidationID,
		"tags", tags,
	)
	return nil
}
