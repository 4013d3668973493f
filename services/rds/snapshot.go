package rds

import (
	"context"

	"code.cloudfoundry.org/lager"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/cloud-gov/rds-helpers/base"
	"github.com/cloud-gov/rds-helpers/helpers"
)

func (s *Shim) createSnapshot(ctx context.Context, database string, snapshotIdentifier string) (*rds.CreateDBSnapshotOutput, error) {
	if err := validateIdentifier(database); err != nil {
		return nil, err
	}
	if snapshotIdentifier == "" {
		snapshotIdentifier = helpers.SnapshotIdentifier(database)
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(base.SnapshotOp.String(), lager.Data{"instance": database, "snapshot": snapshotIdentifier})
	return client.CreateDBSnapshot(ctx, &rds.CreateDBSnapshotInput{
		DBInstanceIdentifier: aws.String(database),
		DBSnapshotIdentifier: aws.String(snapshotIdentifier),
	})
}

// CreateSnapshot starts a manual snapshot of an instance. An empty
// snapshotIdentifier gets a generated name. It returns nil on failure.
func (s *Shim) CreateSnapshot(ctx context.Context, database string, snapshotIdentifier string) *rds.CreateDBSnapshotOutput {
	output, err := s.createSnapshot(ctx, database, snapshotIdentifier)
	if err != nil {
		s.logError(base.SnapshotOp, err, lager.Data{"instance": database, "snapshot": snapshotIdentifier})
		return nil
	}
	return output
}
