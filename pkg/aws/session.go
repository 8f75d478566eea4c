package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/younsl/mskreport/pkg/utils"
)

// CallerIdentityAPI is the STS surface the session needs.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Session holds the resolved AWS configuration and the identity the scan
// runs as. Regional service clients are derived from it.
type Session struct {
	cfg aws.Config

	// AccountID is the 12-digit account the credentials belong to.
	AccountID string
	// Identity is the caller ARN, printed once at startup.
	Identity string
}

// NewSession loads the default credential chain, optionally through a named
// shared-config profile, and verifies it with a GetCallerIdentity call.
// A session that cannot resolve an account is unusable, so any failure
// here is fatal.
func NewSession(ctx context.Context, profile string) (*Session, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	// A profile without a region would leave every non-pinned client unusable.
	if cfg.Region == "" {
		cfg.Region = utils.GetDefaultRegion()
	}

	return newSession(ctx, cfg, sts.NewFromConfig(cfg))
}

func newSession(ctx context.Context, cfg aws.Config, api CallerIdentityAPI) (*Session, error) {
	ident, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("verifying AWS credentials: %w", err)
	}

	return &Session{
		cfg:       cfg,
		AccountID: aws.ToString(ident.Account),
		Identity:  aws.ToString(ident.Arn),
	}, nil
}

// Regional returns a copy of the session config pinned to a region.
func (s *Session) Regional(region string) aws.Config {
	cfg := s.cfg.Copy()
	cfg.Region = region
	return cfg
}

// Base returns a copy of the session config with the operator's own region
// selection, for clients that should not be pinned to a scan region.
func (s *Session) Base() aws.Config {
	return s.cfg.Copy()
}
