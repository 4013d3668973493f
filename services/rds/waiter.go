package rds

import (
	"context"
	"fmt"
	"math"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/cloud-gov/rds-helpers/base"
)

const (
	defaultPollInterval = 30 * time.Second

	// no ceiling on the wait; callers bound it through ctx
	maxWaitTime = time.Duration(math.MaxInt64)
)

func (s *Shim) pollInterval() time.Duration {
	if s.settings.PollInterval <= 0 {
		return defaultPollInterval
	}
	return s.settings.PollInterval
}

func (s *Shim) waitForDbReady(ctx context.Context, database string) error {
	if err := validateIdentifier(database); err != nil {
		return fmt.Errorf("waitForDbReady: %w", err)
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return fmt.Errorf("waitForDbReady: %w", err)
	}

	s.logger.Debug(fmt.Sprintf("Waiting for DB instance %s to be available", database))

	interval := s.pollInterval()
	attempt := 0
	waiter := rds.NewDBInstanceAvailableWaiter(client, func(dawo *rds.DBInstanceAvailableWaiterOptions) {
		// equal delays keep the interval fixed
		dawo.MinDelay = interval
		dawo.MaxDelay = interval

		retryable := dawo.Retryable
		dawo.Retryable = func(ctx context.Context, input *rds.DescribeDBInstancesInput, output *rds.DescribeDBInstancesOutput, err error) (bool, error) {
			attempt++
			if err == nil && len(output.DBInstances) > 0 {
				status := aws.ToString(output.DBInstances[0].DBInstanceStatus)
				s.logger.Debug("instance-status", lager.Data{
					"instance": database,
					"status":   status,
					"state":    base.StateFromRDSStatus(status).String(),
					"attempt":  attempt,
				})
			}
			return retryable(ctx, input, output, err)
		}
	})

	err = waiter.Wait(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(database),
	}, maxWaitTime)
	if err != nil {
		return fmt.Errorf("waitForDbReady: %w", err)
	}
	return nil
}

// WaitForAvailable blocks until the instance reports status available and
// returns true. It returns false after logging if the instance cannot
// become available, describing it fails, or ctx ends first.
func (s *Shim) WaitForAvailable(ctx context.Context, database string) bool {
	err := s.waitForDbReady(ctx, database)
	if err != nil {
		s.logError(base.WaitOp, err, lager.Data{"instance": database})
		return false
	}
	s.logger.Info(fmt.Sprintf("RDS instance %s is available", database))
	return true
}
