package rds

import (
	"context"

	"code.cloudfoundry.org/lager"

	"github.com/cloud-gov/rds-helpers/base"
	"github.com/cloud-gov/rds-helpers/db"
)

// OpenConnection opens a MySQL session on endpoint (host or host:port).
// It returns nil if the server cannot be reached or rejects the login.
func (s *Shim) OpenConnection(ctx context.Context, endpoint string, username string, password string, database string) *db.Connection {
	data := lager.Data{"endpoint": endpoint, "database": database, "username": username}
	s.logger.Debug(base.ConnectOp.String(), data)

	conn, err := s.openDB(ctx, db.DSN(endpoint, username, password, database), s.settings.MaxOpenConns)
	if err != nil {
		s.logError(base.ConnectOp, err, data)
		return nil
	}
	return conn
}

// ExecuteQuery runs query, commits, and returns all rows. It returns nil on
// failure and an empty slice for statements without rows.
func (s *Shim) ExecuteQuery(ctx context.Context, conn *db.Connection, query string) []db.Row {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		s.logError(base.QueryOp, err, nil)
		return nil
	}
	return rows
}

// CloseConnection releases conn. Failures are only logged.
func (s *Shim) CloseConnection(conn *db.Connection) {
	if err := conn.Close(); err != nil {
		s.logError(base.CloseOp, err, nil)
		return
	}
	s.logger.Info("database-connection-closed")
}
