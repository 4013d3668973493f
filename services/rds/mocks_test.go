package rds

import (
	"context"
	"errors"

	"code.cloudfoundry.org/lager/lagertest"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/cloud-gov/rds-helpers/config"
)

var errNotMocked = errors.New("not mocked")

type mockRDSClient struct {
	RDSClientInterface

	createDbInput  *rds.CreateDBInstanceInput
	createDbOutput *rds.CreateDBInstanceOutput
	createDbErr    error

	modifyDbInput  *rds.ModifyDBInstanceInput
	modifyDbOutput *rds.ModifyDBInstanceOutput
	modifyDbErr    error

	deleteDbInput  *rds.DeleteDBInstanceInput
	deleteDbOutput *rds.DeleteDBInstanceOutput
	deleteDbErr    error

	createSnapshotInput  *rds.CreateDBSnapshotInput
	createSnapshotOutput *rds.CreateDBSnapshotOutput
	createSnapshotErr    error

	// each DescribeDBInstances call returns the next result; the last one repeats
	describeDBInstancesResults []*rds.DescribeDBInstancesOutput
	describeDBInstancesErrs    []error
	describeDBInstancesCallNum int
	describeDBInstancesInputs  []*rds.DescribeDBInstancesInput
}

func (m *mockRDSClient) CreateDBInstance(ctx context.Context, params *rds.CreateDBInstanceInput, optFns ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error) {
	m.createDbInput = params
	if m.createDbErr != nil {
		return nil, m.createDbErr
	}
	return m.createDbOutput, nil
}

func (m *mockRDSClient) ModifyDBInstance(ctx context.Context, params *rds.ModifyDBInstanceInput, optFns ...func(*rds.Options)) (*rds.ModifyDBInstanceOutput, error) {
	m.modifyDbInput = params
	if m.modifyDbErr != nil {
		return nil, m.modifyDbErr
	}
	return m.modifyDbOutput, nil
}

func (m *mockRDSClient) DeleteDBInstance(ctx context.Context, params *rds.DeleteDBInstanceInput, optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error) {
	m.deleteDbInput = params
	if m.deleteDbErr != nil {
		return nil, m.deleteDbErr
	}
	return m.deleteDbOutput, nil
}

func (m *mockRDSClient) CreateDBSnapshot(ctx context.Context, params *rds.CreateDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error) {
	m.createSnapshotInput = params
	if m.createSnapshotErr != nil {
		return nil, m.createSnapshotErr
	}
	return m.createSnapshotOutput, nil
}

func (m *mockRDSClient) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	m.describeDBInstancesInputs = append(m.describeDBInstancesInputs, params)
	callNum := m.describeDBInstancesCallNum
	m.describeDBInstancesCallNum++

	if callNum < len(m.describeDBInstancesErrs) && m.describeDBInstancesErrs[callNum] != nil {
		return nil, m.describeDBInstancesErrs[callNum]
	}
	if len(m.describeDBInstancesResults) == 0 {
		return nil, errNotMocked
	}
	if callNum >= len(m.describeDBInstancesResults) {
		callNum = len(m.describeDBInstancesResults) - 1
	}
	return m.describeDBInstancesResults[callNum], nil
}

func describeOutputWithStatus(status string) *rds.DescribeDBInstancesOutput {
	return &rds.DescribeDBInstancesOutput{
		DBInstances: []rdsTypes.DBInstance{
			{
				DBInstanceStatus: &status,
			},
		},
	}
}

func newTestShim(client RDSClientInterface) (*Shim, *lagertest.TestLogger) {
	logger := lagertest.NewTestLogger("rds-test")
	return NewShimWithClient(config.NewSettings(), client, logger), logger
}
