package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	gormMySQL "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	defaultMaxDbConnections = 10
	defaultMySQLPort        = "3306"
	dialTimeout             = 30 * time.Second
	ioTimeout               = 60 * time.Second
)

// ErrNilConnection is returned when an operation is given no connection handle.
var ErrNilConnection = errors.New("connection is nil")

// Connection is an open database session.
type Connection struct {
	db *gorm.DB
}

// Row holds the column values of one result row, in column order.
type Row []any

// DSN builds a go-sql-driver/mysql data source name for an RDS endpoint.
// A port is added when the endpoint does not carry one.
func DSN(endpoint string, username string, password string, database string) string {
	addr := endpoint
	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		addr = net.JoinHostPort(endpoint, defaultMySQLPort)
	}

	cfg := mysql.NewConfig()
	cfg.User = username
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.Timeout = dialTimeout
	cfg.ReadTimeout = ioTimeout
	cfg.WriteTimeout = ioTimeout
	return cfg.FormatDSN()
}

// OpenMySQL opens a session against a MySQL server. The first connection
// is made with ctx, so a server that never completes the handshake fails
// once ctx ends.
func OpenMySQL(ctx context.Context, dsn string, maxOpenConns int) (*Connection, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenMySQL: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("OpenMySQL: %w", err)
	}

	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("OpenMySQL: %w", err)
	}

	return Open(ctx, gormMySQL.New(gormMySQL.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), maxOpenConns)
}

// Open opens a session with the given dialector and pings the server with
// ctx, so an unreachable server fails here rather than on the first query.
func Open(ctx context.Context, dialector gorm.Dialector, maxOpenConns int) (*Connection, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	if maxOpenConns <= 0 {
		maxOpenConns = defaultMaxDbConnections
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("Open: %w", err)
	}

	return &Connection{db: db}, nil
}

// Query runs query in a transaction, commits it and returns every row.
// Statements without a result set return an empty slice.
func (c *Connection) Query(ctx context.Context, query string) ([]Row, error) {
	if c == nil || c.db == nil {
		return nil, ErrNilConnection
	}

	result := []Row{}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := tx.Raw(query).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return err
		}

		for rows.Next() {
			values := make([]any, len(columns))
			pointers := make([]any, len(columns))
			for i := range values {
				pointers[i] = &values[i]
			}
			if err := rows.Scan(pointers...); err != nil {
				return err
			}
			for i, v := range values {
				if b, ok := v.([]byte); ok {
					values[i] = string(b)
				}
			}
			result = append(result, Row(values))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("Query: %w", err)
	}

	return result, nil
}

// Close releases the session and every pooled connection behind it.
func (c *Connection) Close() error {
	if c == nil || c.db == nil {
		return ErrNilConnection
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return sqlDB.Close()
}
