package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloud-gov/rds-helpers/testutil"
	"github.com/go-sql-driver/mysql"
	"github.com/go-test/deep"
	gormMySQL "gorm.io/driver/mysql"
)

// countingConnector hands out connections that only record being opened and
// closed. Anything else fails.
type countingConnector struct {
	opened     atomic.Int32
	closed     atomic.Int32
	connectErr error
}

func (c *countingConnector) Connect(context.Context) (driver.Conn, error) {
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	c.opened.Add(1)
	return &countingConn{connector: c}, nil
}

func (c *countingConnector) Driver() driver.Driver {
	return countingDriver{connector: c}
}

type countingDriver struct {
	connector *countingConnector
}

func (d countingDriver) Open(string) (driver.Conn, error) {
	return d.connector.Connect(context.Background())
}

type countingConn struct {
	connector *countingConnector
}

func (c *countingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}

func (c *countingConn) Close() error {
	c.connector.closed.Add(1)
	return nil
}

func (c *countingConn) Begin() (driver.Tx, error) {
	return nil, errors.New("not supported")
}

func openCounting(t *testing.T, connector *countingConnector) (*Connection, error) {
	t.Helper()
	dialector := gormMySQL.New(gormMySQL.Config{
		Conn:                      sql.OpenDB(connector),
		SkipInitializeWithVersion: true,
	})
	return Open(context.Background(), dialector, 1)
}

func openSqlite(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(context.Background(), testutil.SqliteDialector(), 1)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDSN(t *testing.T) {
	testCases := map[string]struct {
		endpoint     string
		expectedAddr string
	}{
		"host only": {
			endpoint:     "db-1.abc.us-east-1.rds.amazonaws.com",
			expectedAddr: "db-1.abc.us-east-1.rds.amazonaws.com:3306",
		},
		"host and port": {
			endpoint:     "db-1.abc.us-east-1.rds.amazonaws.com:3307",
			expectedAddr: "db-1.abc.us-east-1.rds.amazonaws.com:3307",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			dsn := DSN(test.endpoint, "admin", "p@ss:word/", "app")

			cfg, err := mysql.ParseDSN(dsn)
			if err != nil {
				t.Fatal(err)
			}

			got := []string{cfg.User, cfg.Passwd, cfg.Net, cfg.Addr, cfg.DBName}
			expected := []string{"admin", "p@ss:word/", "tcp", test.expectedAddr, "app"}
			if diff := deep.Equal(got, expected); diff != nil {
				t.Error(diff)
			}
			if !cfg.ParseTime {
				t.Error("expected parseTime to be set")
			}
			if cfg.ReadTimeout == 0 || cfg.WriteTimeout == 0 {
				t.Error("expected read and write timeouts to be set")
			}
		})
	}
}

func TestOpenThenCloseReleasesConnections(t *testing.T) {
	connector := &countingConnector{}

	conn, err := openCounting(t, connector)
	if err != nil {
		t.Fatal(err)
	}
	if opened := connector.opened.Load(); opened != 1 {
		t.Fatalf("expected 1 driver connection after open, got %d", opened)
	}

	err = conn.Close()
	if err != nil {
		t.Fatal(err)
	}

	if opened, closed := connector.opened.Load(), connector.closed.Load(); opened != closed {
		t.Fatalf("expected every opened connection to be closed, opened %d closed %d", opened, closed)
	}
}

func TestOpenPingError(t *testing.T) {
	connector := &countingConnector{connectErr: errors.New("connection refused")}

	conn, err := openCounting(t, connector)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if conn != nil {
		t.Fatal("expected no connection on error")
	}
}

// silentServer accepts TCP connections and never sends a handshake.
func silentServer(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		listener.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	})
	return listener.Addr().String()
}

func TestOpenMySQLHonoursContext(t *testing.T) {
	addr := silentServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	type result struct {
		conn *Connection
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := OpenMySQL(ctx, DSN(addr, "admin", "secret", "app"), 1)
		done <- result{conn, err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			t.Fatal("expected error, got nil")
		}
		if res.conn != nil {
			t.Fatal("expected no connection on error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("OpenMySQL still blocked 3s after a 200ms deadline")
	}
}

func TestOpenMySQLInvalidDSN(t *testing.T) {
	conn, err := OpenMySQL(context.Background(), "not a dsn", 1)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if conn != nil {
		t.Fatal("expected no connection on error")
	}
}

func TestQuery(t *testing.T) {
	conn := openSqlite(t)
	ctx := context.Background()

	rows, err := conn.Query(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)")
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", rows)
	}

	_, err = conn.Query(ctx, "INSERT INTO widgets (id, name) VALUES (1, 'gear'), (2, 'sprocket')")
	if err != nil {
		t.Fatal(err)
	}

	rows, err = conn.Query(ctx, "SELECT id, name FROM widgets ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}

	expectedRows := []Row{
		{int64(1), "gear"},
		{int64(2), "sprocket"},
	}
	if diff := deep.Equal(rows, expectedRows); diff != nil {
		t.Error(diff)
	}
}

func TestQueryEmptyResult(t *testing.T) {
	conn := openSqlite(t)
	ctx := context.Background()

	if _, err := conn.Query(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatal(err)
	}

	rows, err := conn.Query(ctx, "SELECT id FROM widgets")
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil {
		t.Fatal("expected empty non-nil result for a query with no rows")
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestQueryErrors(t *testing.T) {
	closedConn, err := Open(context.Background(), testutil.SqliteDialector(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := closedConn.Close(); err != nil {
		t.Fatal(err)
	}

	testCases := map[string]struct {
		conn  *Connection
		query string
	}{
		"syntax error": {
			conn:  openSqlite(t),
			query: "SELEC nothing",
		},
		"closed connection": {
			conn:  closedConn,
			query: "SELECT 1",
		},
		"nil connection": {
			conn:  nil,
			query: "SELECT 1",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			rows, err := test.conn.Query(context.Background(), test.query)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if rows != nil {
				t.Fatalf("expected nil rows on error, got %#v", rows)
			}
		})
	}
}

func TestCloseNilConnection(t *testing.T) {
	var conn *Connection
	if err := conn.Close(); !errors.Is(err, ErrNilConnection) {
		t.Fatalf("expected ErrNilConnection, got %v", err)
	}
}
