// 包 store: 远程事务型 SQL 存储的访问层，提供单语句执行、原子批处理与按列序返回的结果集
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"visit-map/internal/logger"
)

// Store: 数据库访问入口，持有连接池与驱动名
type Store struct {
	db     *sql.DB
	driver string
}

// AttachDB: 包装已打开的连接池；driver 决定占位符改写方式
func AttachDB(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: strings.ToLower(strings.TrimSpace(driver))}
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Driver() string { return s.driver }

// PingContext: 供健康检查使用
func (s *Store) PingContext(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

// Statement: 一条带位置参数（?）的语句
type Statement struct {
	SQL  string
	Args []any
}

func NewStatement(query string, args ...any) Statement {
	return Statement{SQL: query, Args: args}
}

// Rows: 物化后的查询结果，列名保持 SELECT 中的顺序
type Rows struct {
	Columns []string
	Values  [][]any
}

func (r Rows) Len() int { return len(r.Values) }

// Index: 按列名查找下标，不存在返回 -1
func (r Rows) Index(col string) int {
	for i, c := range r.Columns {
		if strings.EqualFold(c, col) {
			return i
		}
	}
	return -1
}

// Error: 存储层错误，记录失败的操作与语句
type Error struct {
	Op  string
	SQL string
	Err error
}

func (e *Error) Error() string {
	if e.SQL != "" {
		return "store: " + e.Op + " (" + e.SQL + "): " + e.Err.Error()
	}
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Exec: 执行不返回结果集的语句（DDL/DML），返回受影响行数
func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, &Error{Op: "exec", SQL: query, Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Execute: 执行查询并完整读取结果集
// 约束：无分页；调用方需保证结果规模有限
func (s *Store) Execute(ctx context.Context, query string, args ...any) (Rows, error) {
	var out Rows
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return out, &Error{Op: "query", SQL: query, Err: err}
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return out, &Error{Op: "columns", SQL: query, Err: err}
	}
	out.Columns = cols
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return out, &Error{Op: "scan", SQL: query, Err: err}
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Values = append(out.Values, vals)
	}
	if err := rows.Err(); err != nil {
		return out, &Error{Op: "rows", SQL: query, Err: err}
	}
	logger.L().Debug("store_query_done", "rows", len(out.Values), "cols", len(cols))
	return out, nil
}

// ExecuteBatch: 在单个事务内按顺序执行全部语句
// 约束：任一语句失败即整体回滚并返回该错误，不对部分语句重试；隔离级别取驱动默认值
func (s *Store) ExecuteBatch(ctx context.Context, stmts []Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "begin", Err: err}
	}
	defer tx.Rollback()
	for i, st := range stmts {
		if _, err := tx.ExecContext(ctx, s.rebind(st.SQL), st.Args...); err != nil {
			logger.L().Debug("store_batch_rollback", "idx", i, "err", err)
			return &Error{Op: fmt.Sprintf("batch[%d]", i), SQL: st.SQL, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Op: "commit", Err: err}
	}
	logger.L().Debug("store_batch_done", "stmts", len(stmts))
	return nil
}

// rebind: 将 ? 占位符改写为 PostgreSQL 的 $n；单引号字符串内的 ? 保持原样
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" && s.driver != "pgx" {
		return query
	}
	return Rebind(query)
}

func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
