package registrar

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

const route53TTL = 300

// Route53API is the subset of the Route53 client used by the registrar.
type Route53API interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Route53 points custom domains at the platform with CNAME records in a
// hosted zone the platform controls.
type Route53 struct {
	client       Route53API
	hostedZoneID string
	target       string
	logger       *slog.Logger
}

var _ Registrar = (*Route53)(nil)

// NewRoute53 creates a Route53 registrar writing CNAMEs to target.
func NewRoute53(client Route53API, hostedZoneID, target string, logger *slog.Logger) *Route53 {
	return &Route53{
		client:       client,
		hostedZoneID: hostedZoneID,
		target:       target,
		logger:       logger,
	}
}

// AddDomain implements Registrar.
func (r *Route53) AddDomain(ctx context.Context, domain string) error {
	if err := r.change(ctx, r53types.ChangeActionUpsert, domain); err != nil {
		return &OpError{Op: "add", Provider: "route53", Domain: domain, Err: err}
	}
	return nil
}

// RemoveDomain implements Registrar.
func (r *Route53) RemoveDomain(ctx context.Context, domain string) error {
	err := r.change(ctx, r53types.ChangeActionDelete, domain)

	// Deleting a record that does not exist is rejected as an invalid batch.
	var invalid *r53types.InvalidChangeBatch
	if errors.As(err, &invalid) {
		r.logger.Debug("route53 record already absent", "domain", domain)
		return nil
	}
	if err != nil {
		return &OpError{Op: "remove", Provider: "route53", Domain: domain, Err: err}
	}
	return nil
}

func (r *Route53) change(ctx context.Context, action r53types.ChangeAction, domain string) error {
	_, err := r.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{{
				Action: action,
				ResourceRecordSet: &r53types.ResourceRecordSet{
					Name: aws.String(domain),
					Type: r53types.RRTypeCname,
					TTL:  aws.Int64(route53TTL),
					ResourceRecords: []r53types.ResourceRecord{
						{Value: aws.String(r.target)},
					},
				},
			}},
			Comment: aws.String("Gatherly custom domain"),
		},
	})
	return err
}
