package rds

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"code.cloudfoundry.org/lager"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/cloud-gov/rds-helpers/base"
	"github.com/cloud-gov/rds-helpers/common"
	"github.com/cloud-gov/rds-helpers/config"
	"github.com/cloud-gov/rds-helpers/db"
	rdsErrors "github.com/cloud-gov/rds-helpers/errors"
)

type clientFactory func(ctx context.Context, s config.Settings) (RDSClientInterface, error)

type dbOpener func(ctx context.Context, dsn string, maxOpenConns int) (*db.Connection, error)

// Shim forwards calls to RDS and to MySQL. Every exported method logs
// failures and returns an empty result instead of an error.
type Shim struct {
	settings config.Settings
	logger   lager.Logger

	mu        sync.Mutex
	client    RDSClientInterface
	newClient clientFactory

	openDB dbOpener
}

// NewShim returns a shim whose RDS client is built on first use from the
// ambient AWS configuration.
func NewShim(s *config.Settings, logger lager.Logger) *Shim {
	return &Shim{
		settings:  *s,
		logger:    logger.Session("rds-shim"),
		newClient: newRDSClient,
		openDB:    db.OpenMySQL,
	}
}

// NewShimWithClient returns a shim that uses rdsClient instead of building one.
func NewShimWithClient(s *config.Settings, rdsClient RDSClientInterface, logger lager.Logger) *Shim {
	shim := NewShim(s, logger)
	shim.client = rdsClient
	return shim
}

// NewDefaultShim loads settings from the environment and logs to stdout.
func NewDefaultShim() (*Shim, error) {
	settings := config.NewSettings()
	if err := settings.LoadFromEnv(); err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(settings)
	if err != nil {
		return nil, err
	}
	return NewShim(settings, logger), nil
}

func newRDSClient(ctx context.Context, s config.Settings) (RDSClientInterface, error) {
	var opts []func(*awsConfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsConfig.WithRegion(s.Region))
	}
	if s.AccessKeyID != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, s.SessionToken),
		))
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return rds.NewFromConfig(cfg), nil
}

// rdsClient returns the cached client, building it if needed. A failed
// build is not cached so the next call tries again.
func (s *Shim) rdsClient(ctx context.Context) (RDSClientInterface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	client, err := s.newClient(ctx, s.settings)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	s.client = client
	return client, nil
}

func (s *Shim) logError(op base.Operation, err error, data lager.Data) {
	rdsErrors.LogAWSError(s.logger, op.String(), err, data)
}

func (s *Shim) prepareCreateDbInput(input CreateInstanceInput) (*rds.CreateDBInstanceInput, error) {
	if input.InstanceClass == "" {
		input.InstanceClass = s.settings.DefaultInstanceClass
	}
	if input.Engine == "" {
		input.Engine = s.settings.DefaultEngine
	}
	if input.AllocatedStorage == 0 {
		input.AllocatedStorage = s.settings.DefaultAllocatedStorage
	}

	allocatedStorage, err := common.ConvertInt64ToInt32Safely(input.AllocatedStorage)
	if err != nil {
		return nil, err
	}

	return &rds.CreateDBInstanceInput{
		AllocatedStorage:     allocatedStorage,
		DBInstanceClass:      aws.String(input.InstanceClass),
		DBInstanceIdentifier: aws.String(input.Identifier),
		Engine:               aws.String(input.Engine),
		MasterUsername:       aws.String(input.MasterUsername),
		MasterUserPassword:   aws.String(input.MasterPassword),
		PubliclyAccessible:   aws.Bool(s.settings.PubliclyAccessible),
		MultiAZ:              aws.Bool(s.settings.MultiAZ),
		Tags:                 ConvertTagsToRDSTags(instanceTags(input.Identifier, input.Tags)),
	}, nil
}

func (s *Shim) createInstance(ctx context.Context, input CreateInstanceInput) (*rds.CreateDBInstanceOutput, error) {
	if err := validateCreateInstanceInput(input); err != nil {
		return nil, err
	}

	params, err := s.prepareCreateDbInput(input)
	if err != nil {
		return nil, fmt.Errorf("createInstance: %w", err)
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(base.CreateOp.String(), lager.Data{
		"instance": input.Identifier,
		"class":    *params.DBInstanceClass,
		"engine":   *params.Engine,
	})
	return client.CreateDBInstance(ctx, params)
}

// CreateInstance starts creating a database instance. It returns nil if the
// request could not be made.
func (s *Shim) CreateInstance(ctx context.Context, input CreateInstanceInput) *rds.CreateDBInstanceOutput {
	output, err := s.createInstance(ctx, input)
	if err != nil {
		s.logError(base.CreateOp, err, lager.Data{"instance": input.Identifier})
		return nil
	}
	return output
}

func (s *Shim) describeDatabaseInstance(ctx context.Context, database string) (*rdsTypes.DBInstance, error) {
	if err := validateIdentifier(database); err != nil {
		return nil, err
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(database),
	})
	if err != nil {
		return nil, err
	}

	numOfInstances := len(resp.DBInstances)
	if numOfInstances == 0 {
		return nil, errors.New("could not find any instances")
	}

	if numOfInstances > 1 {
		return nil, fmt.Errorf("found more than one database for %s", database)
	}

	return &resp.DBInstances[0], nil
}

func (s *Shim) getEndpoint(ctx context.Context, database string) (*DBEndpointDetails, error) {
	dbInstance, err := s.describeDatabaseInstance(ctx, database)
	if err != nil {
		return nil, err
	}

	if dbInstance.Endpoint == nil || dbInstance.Endpoint.Address == nil || dbInstance.Endpoint.Port == nil {
		return nil, fmt.Errorf("endpoint information not available for database %s (status %s)",
			database, aws.ToString(dbInstance.DBInstanceStatus))
	}

	return &DBEndpointDetails{
		Host: *dbInstance.Endpoint.Address,
		Port: int64(*dbInstance.Endpoint.Port),
	}, nil
}

// GetEndpoint returns the host and port of an instance, or nil.
func (s *Shim) GetEndpoint(ctx context.Context, database string) *DBEndpointDetails {
	endpoint, err := s.getEndpoint(ctx, database)
	if err != nil {
		s.logError(base.EndpointOp, err, lager.Data{"instance": database})
		return nil
	}
	return endpoint
}

func (s *Shim) listInstances(ctx context.Context) ([]rdsTypes.DBInstance, error) {
	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	instances := []rdsTypes.DBInstance{}
	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listInstances: error handling next page: %w", err)
		}
		instances = append(instances, output.DBInstances...)
	}

	return instances, nil
}

// ListInstances returns every instance visible to the account. An account
// without instances gives an empty, non-nil slice; nil means the listing failed.
func (s *Shim) ListInstances(ctx context.Context) []rdsTypes.DBInstance {
	instances, err := s.listInstances(ctx)
	if err != nil {
		s.logError(base.ListOp, err, nil)
		return nil
	}
	return instances
}

func (s *Shim) modifyInstance(ctx context.Context, database string, instanceClass string) (*rds.ModifyDBInstanceOutput, error) {
	if err := validateIdentifier(database); err != nil {
		return nil, err
	}
	if err := validate.Field(instanceClass, "required"); err != nil {
		return nil, errors.New("instance class is required")
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	params := &rds.ModifyDBInstanceInput{
		DBInstanceIdentifier: aws.String(database),
		DBInstanceClass:      aws.String(instanceClass),
		ApplyImmediately:     aws.Bool(s.settings.ApplyImmediately),
	}
	s.logger.Debug(base.ModifyOp.String(), lager.Data{"instance": database, "class": instanceClass})
	return client.ModifyDBInstance(ctx, params)
}

// ModifyInstance changes the instance class. It returns nil on failure.
func (s *Shim) ModifyInstance(ctx context.Context, database string, instanceClass string) *rds.ModifyDBInstanceOutput {
	output, err := s.modifyInstance(ctx, database, instanceClass)
	if err != nil {
		s.logError(base.ModifyOp, err, lager.Data{"instance": database, "class": instanceClass})
		return nil
	}
	return output
}

func prepareDeleteDbInput(database string) *rds.DeleteDBInstanceInput {
	return &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier:   aws.String(database), // Required
		DeleteAutomatedBackups: aws.Bool(false),
		SkipFinalSnapshot:      aws.Bool(true),
	}
}

func (s *Shim) deleteInstance(ctx context.Context, database string) (*rds.DeleteDBInstanceOutput, error) {
	if err := validateIdentifier(database); err != nil {
		return nil, err
	}

	client, err := s.rdsClient(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(base.DeleteOp.String(), lager.Data{"instance": database})
	return client.DeleteDBInstance(ctx, prepareDeleteDbInput(database))
}

// DeleteInstance deletes an instance without a final snapshot. It returns nil on failure.
func (s *Shim) DeleteInstance(ctx context.Context, database string) *rds.DeleteDBInstanceOutput {
	output, err := s.deleteInstance(ctx, database)
	if err != nil {
		if isDatabaseInstanceNotFoundError(err) {
			s.logger.Debug("already-deleted", lager.Data{"instance": database})
			return nil
		}
		s.logError(base.DeleteOp, err, lager.Data{"instance": database})
		return nil
	}
	return output
}

func isDatabaseInstanceNotFoundError(err error) bool {
	var notFoundException *rdsTypes.DBInstanceNotFoundFault
	return errors.As(err, &notFoundException)
}
