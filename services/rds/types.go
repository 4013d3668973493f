package rds

import (
	"context"
	"net"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/rds"
)

type RDSClientInterface interface {
	CreateDBInstance(ctx context.Context, params *rds.CreateDBInstanceInput, optFns ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error)
	CreateDBSnapshot(ctx context.Context, params *rds.CreateDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error)
	DeleteDBInstance(ctx context.Context, params *rds.DeleteDBInstanceInput, optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error)
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	ModifyDBInstance(ctx context.Context, params *rds.ModifyDBInstanceInput, optFns ...func(*rds.Options)) (*rds.ModifyDBInstanceOutput, error)
}

// CreateInstanceInput holds the caller supplied parameters for a new
// instance. Empty optional fields fall back to the configured defaults.
type CreateInstanceInput struct {
	Identifier     string `validate:"required"`
	MasterUsername string `validate:"required"`
	MasterPassword string `validate:"required"`

	InstanceClass    string
	Engine           string
	AllocatedStorage int64 `validate:"min=0"`

	Tags map[string]string
}

type DBEndpointDetails struct {
	Host string
	Port int64
}

// Address returns the endpoint as host:port.
func (e DBEndpointDetails) Address() string {
	return net.JoinHostPort(e.Host, strconv.FormatInt(e.Port, 10))
}
