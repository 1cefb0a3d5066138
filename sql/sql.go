// Package sql wraps database/sql for Postgres connections. It provides a
// Connection with internal transaction tracking, squirrel statement builders
// bound to the dollar placeholder format and helpers that execute built
// statements while returning coded errors.
package sql

import (
	"fmt"
	"os"
	"strings"

	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/crestfall/migrate/e"

	// Including postgres library for SQL connections
	_ "github.com/lib/pq"
)

const (
	ECode020301 = e.Code0203 + "01"
	ECode020302 = e.Code0203 + "02"
	ECode020303 = e.Code0203 + "03"
	ECode020304 = e.Code0203 + "04"
	ECode020305 = e.Code0203 + "05"
	ECode020306 = e.Code0203 + "06"
	ECode020307 = e.Code0203 + "07"
	ECode020308 = e.Code0203 + "08"
	ECode020309 = e.Code0203 + "09"
	ECode02030A = e.Code0203 + "0A"
	ECode02030B = e.Code0203 + "0B"
	ECode02030C = e.Code0203 + "0C"
	ECode02030D = e.Code0203 + "0D"
	ECode02030E = e.Code0203 + "0E"
	ECode02030F = e.Code0203 + "0F"
	ECode02030G = e.Code0203 + "0G"
	ECode02030H = e.Code0203 + "0H"
	ECode02030I = e.Code0203 + "0I"
	ECode02030J = e.Code0203 + "0J"
	ECode02030K = e.Code0203 + "0K"
	ECode02030L = e.Code0203 + "0L"
	ECode02030M = e.Code0203 + "0M"
)

// Connection wrapper of the *sql.DB
// If a transaction is started, it is stored internally in the txn and automatically
// used when making DB calls until commit/rollback is executed. If during a txn, a
// call outside of the txn is needed, the DB property can be accessed directly and
// used to make a query/exec/select call.
type Connection struct {
	DB  *sql.DB
	txn *sql.Tx
}

// ConnParam connection parameters used to initialize a connection
type ConnParam struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SearchPath string
}

// GetConnParamFromENV initializes new connection parameters and populates from ENV variables
func GetConnParamFromENV() (cp *ConnParam) {
	cp = &ConnParam{}

	if os.Getenv("DBHOST") != "" {
		cp.Host = os.Getenv("DBHOST")
	}
	if os.Getenv("DBPORT") != "" {
		cp.Port = os.Getenv("DBPORT")
	}
	if os.Getenv("DBUSER") != "" {
		cp.User = os.Getenv("DBUSER")
	}
	if os.Getenv("DBPASS") != "" {
		cp.Password = os.Getenv("DBPASS")
	}
	if os.Getenv("DBNAME") != "" {
		cp.DBName = os.Getenv("DBNAME")
	}
	if os.Getenv("SSLMODE") != "" {
		cp.SSLMode = fmt.Sprintf("sslmode=%s", os.Getenv("SSLMODE"))
	}
	if os.Getenv("DBSEARCHPATH") != "" {
		cp.SearchPath = fmt.Sprintf("search_path=%s", os.Getenv("DBSEARCHPATH"))
	}

	return cp
}

// GetConnectionStr returns a connection string
func GetConnectionStr(cp *ConnParam) (connStr string) {
	var csb strings.Builder

	if cp == nil {
		cp = GetConnParamFromENV()
	}

	_, _ = csb.WriteString("host=")
	_, _ = csb.WriteString(cp.Host)
	_, _ = csb.WriteString(" port=")
	_, _ = csb.WriteString(cp.Port)
	_, _ = csb.WriteString(" user=")
	_, _ = csb.WriteString(cp.User)
	_, _ = csb.WriteString(" password=")
	_, _ = csb.WriteString(cp.Password)
	_, _ = csb.WriteString(" dbname=")
	_, _ = csb.WriteString(cp.DBName)

	_, _ = csb.WriteString(" ")
	if cp.SSLMode != "" {
		_, _ = csb.WriteString(cp.SSLMode)
	} else {
		_, _ = csb.WriteString("sslmode=require")
	}

	if cp.SearchPath != "" {
		_, _ = csb.WriteString(" ")
		_, _ = csb.WriteString(cp.SearchPath)
	}

	return csb.String()
}

// NewPostgresConn initializes a new Postgres connection
func NewPostgresConn(cp *ConnParam) (conn *Connection, err error) {
	if cp == nil {
		cp = GetConnParamFromENV()
	}

	sqlConn, err := sql.Open("postgres", GetConnectionStr(cp))
	if err != nil {
		return nil, e.W(err, ECode020301, "Failed to connect to DB")
	}
	if err := sqlConn.Ping(); err != nil {
		return nil, e.W(err, ECode020302, "Failed to ping DB")
	}

	return &Connection{DB: sqlConn}, nil
}

// Txn returns the underlying transaction, if currently in one
func (c *Connection) Txn() *sql.Tx {
	return c.txn
}

// Begin wrapper for sql.Begin. It doesn't return the txn object, but stores
// it internally and it will be used automatically for subsequent query/exec/select
// calls until commit/rollback is called
func (c *Connection) Begin() (err error) {
	if c.txn != nil {
		return e.N(ECode020303, "already in a txn")
	}
	c.txn, err = c.DB.Begin()
	if err != nil {
		return e.W(err, ECode020304)
	}

	return nil
}

// Commit wrapper for sql.Commit. If successful, will unset the txn object
func (c *Connection) Commit() (err error) {
	if c.txn == nil {
		return e.N(ECode020305, "not in a txn")
	}

	if err = c.txn.Commit(); err != nil {
		return e.W(err, ECode020306)
	}

	c.txn = nil

	return nil
}

// RollbackIfInTxn same as Rollback, except if it is not in a txn, it will not
// return an error
func (c *Connection) RollbackIfInTxn() {
	if c.txn == nil {
		return
	}

	_ = c.Rollback()
}

// Rollback wrapper for sql.Rollback - no matter what the transaction will
// be cancelled and considered unavailable afterwards
func (c *Connection) Rollback() (err error) {
	if c.txn == nil {
		return e.N(ECode020307, "not in a txn")
	}

	if err := c.txn.Rollback(); err != nil {
		c.txn = nil
		return e.W(err, ECode020308)
	}

	c.txn = nil

	return nil
}

// Query wrapper for sql.Query with automatic txn handling
func (c *Connection) Query(query string, args ...interface{}) (rows *Rows, err error) {
	if c.txn != nil {
		sqlRows, err := c.txn.Query(query, args...)
		if err != nil {
			// Not logging args because it may contain sensitive information. The
			// caller can log them if needed
			return nil, e.W(err, ECode020309, fmt.Sprintf("query: %s\n", query))
		}
		return &Rows{
			rows:  sqlRows,
			query: query,
		}, nil
	}

	sqlRows, err := c.DB.Query(query, args...)
	if err != nil {
		// Not logging args because it may contain sensitive information. The
		// caller can log them if needed
		return nil, e.W(err, ECode02030A, fmt.Sprintf("query: %s\n", query))
	}

	return &Rows{
		rows:  sqlRows,
		query: query,
	}, nil
}

// Exec wrapper for sql.Exec with automatic txn handling
func (c *Connection) Exec(query string, args ...interface{}) (res sql.Result, err error) {
	if c.txn != nil {
		res, err = c.txn.Exec(query, args...)
	} else {
		res, err = c.DB.Exec(query, args...)
	}
	if err != nil {
		// Not logging args because it may contain sensitive information. The
		// caller can log them if needed
		return nil, e.W(err, ECode02030B, fmt.Sprintf("query: %s\n", query))
	}

	return res, nil
}

// QueryRow wrapper for sql.QueryRow with automatic txn handling
func (c *Connection) QueryRow(query string, args ...interface{}) (row *Row) {
	if c.txn != nil {
		return &Row{
			row:   c.txn.QueryRow(query, args...),
			query: query,
		}
	}
	return &Row{
		row:   c.DB.QueryRow(query, args...),
		query: query,
	}
}

// Select wrapper for github.com/Masterminds/squirrel.Select
func (c *Connection) Select(columns ...string) sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select(columns...)
}

// Insert wrapper for github.com/Masterminds/squirrel.Insert
func (c *Connection) Insert(table string) sq.InsertBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Insert(table)
}

// Delete wrapper for github.com/Masterminds/squirrel.Delete
func (c *Connection) Delete(from string) sq.DeleteBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Delete(from)
}

// Update wrapper for github.com/Masterminds/squirrel.Update
func (c *Connection) Update(table string) sq.UpdateBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Update(table)
}

// Expr wrapper for github.com/Masterminds/squirrel.Expr
func (c *Connection) Expr(sql string, args interface{}) sq.Sqlizer {
	return sq.Expr(sql, args)
}

// ToSQLAndQuery converts the select builder to a SQL statement and bind parameters,
// then attempts to execute the query, returning the rows
func (c *Connection) ToSQLAndQuery(sb sq.SelectBuilder) (rows *Rows, err error) {
	stmt, bindList, err := sb.ToSql()
	if err != nil {
		return nil, e.W(err, ECode02030C, fmt.Sprintf("stmt: %s\n", stmt))
	}

	rows, err = c.Query(stmt, bindList...)
	if err != nil {
		return nil, e.W(err, ECode02030D)
	}

	return rows, nil
}

// ToSQLAndQueryRow converts the select builder to a SQL statement and bind parameters,
// then attempts to execute the query, returning a single row
func (c *Connection) ToSQLAndQueryRow(sb sq.SelectBuilder) (row *Row, err error) {
	stmt, bindList, err := sb.ToSql()
	if err != nil {
		return nil, e.W(err, ECode02030E, fmt.Sprintf("stmt: %s\n", stmt))
	}

	return c.QueryRow(stmt, bindList...), nil
}

// ExecInsert wrapper to generate SQL/bind list and then execute insert query
func (c *Connection) ExecInsert(ib sq.InsertBuilder) (err error) {
	stmt, bindList, err := ib.ToSql()
	if err != nil {
		return e.W(err, ECode02030F, fmt.Sprintf("stmt: %s\n", stmt))
	}

	if _, err := c.Exec(stmt, bindList...); err != nil {
		return e.W(err, ECode02030G)
	}

	return nil
}

// ExecUpdate wrapper to generate SQL/bind list and then execute update query
func (c *Connection) ExecUpdate(ub sq.UpdateBuilder) (err error) {
	stmt, bindList, err := ub.ToSql()
	if err != nil {
		return e.W(err, ECode02030H, fmt.Sprintf("stmt: %s\n", stmt))
	}

	if _, err := c.Exec(stmt, bindList...); err != nil {
		return e.W(err, ECode02030I)
	}

	return nil
}

// ExecDelete wrapper to generate SQL/bind list and then execute delete query
func (c *Connection) ExecDelete(delB sq.DeleteBuilder) (err error) {
	stmt, bindList, err := delB.ToSql()
	if err != nil {
		return e.W(err, ECode02030J, fmt.Sprintf("stmt: %s\n", stmt))
	}

	if _, err := c.Exec(stmt, bindList...); err != nil {
		return e.W(err, ECode02030K)
	}

	return nil
}

// ExecInsertReturningID wrapper to generate SQL/bind list and then execute the
// insert query, scanning the returned id
func (c *Connection) ExecInsertReturningID(ib sq.InsertBuilder) (id int, err error) {
	stmt, bindList, err := ib.ToSql()
	if err != nil {
		return 0, e.W(err, ECode02030L, fmt.Sprintf("stmt: %s\n", stmt))
	}

	if err := c.QueryRow(stmt, bindList...).Scan(&id); err != nil {
		return 0, e.W(err, ECode02030M, fmt.Sprintf("stmt: %s\n", stmt))
	}

	return id, nil
}
