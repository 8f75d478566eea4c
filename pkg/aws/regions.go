package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/younsl/mskreport/pkg/utils"
)

// ErrNoRegions means region resolution produced an empty scan set. The run
// cannot proceed without at least one region.
var ErrNoRegions = errors.New("no usable regions to scan")

// RegionDiscoveryError wraps a DescribeRegions failure. Discovery is only
// attempted when no regions were given explicitly, so the failure is fatal.
type RegionDiscoveryError struct {
	Err error
}

func (e *RegionDiscoveryError) Error() string {
	return fmt.Sprintf("discovering enabled regions: %v", e.Err)
}

func (e *RegionDiscoveryError) Unwrap() error {
	return e.Err
}

// RegionsAPI is the EC2 surface needed for region discovery.
type RegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// NewRegionsClient returns the client ResolveRegions discovers with.
func (s *Session) NewRegionsClient() RegionsAPI {
	return ec2.NewFromConfig(s.Regional(utils.GetDefaultRegion()))
}

// ResolveRegions turns the user's region list into the set of regions to
// scan. An explicit list is filtered against the regions MSK is offered in;
// unknown entries are skipped with a warning. With no explicit list, the
// account's enabled regions are discovered and filtered the same way.
// Order is preserved and duplicates are dropped.
func ResolveRegions(ctx context.Context, api RegionsAPI, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		regions := filterRegions(explicit, true)
		if len(regions) == 0 {
			return nil, fmt.Errorf("%w: none of the requested regions are valid", ErrNoRegions)
		}
		return regions, nil
	}

	resp, err := api.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, &RegionDiscoveryError{Err: err}
	}

	discovered := make([]string, 0, len(resp.Regions))
	for _, r := range resp.Regions {
		discovered = append(discovered, aws.ToString(r.RegionName))
	}

	regions := filterRegions(discovered, false)
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: account has no enabled regions with MSK", ErrNoRegions)
	}
	return regions, nil
}

func filterRegions(candidates []string, warn bool) []string {
	seen := make(map[string]bool, len(candidates))
	regions := make([]string, 0, len(candidates))
	for _, region := range candidates {
		region = strings.TrimSpace(region)
		if !utils.IsValidRegion(region) {
			if warn {
				fmt.Printf("Warning: skipping invalid region '%s'\n", region)
			}
			continue
		}
		if seen[region] {
			continue
		}
		seen[region] = true
		regions = append(regions, region)
	}
	return regions
}
