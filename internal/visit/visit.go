// 包 visit：访问记录的核心流程，依次建表、解析位置、原子写入、回读与渲染
package visit

import (
	"context"
	"visit-map/internal/locate"
	"visit-map/internal/logger"
	"visit-map/internal/store"
)

// Store：流程依赖的存储能力；*store.Store 满足该接口
type Store interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Execute(ctx context.Context, query string, args ...any) (store.Rows, error)
	ExecuteBatch(ctx context.Context, stmts []store.Statement) error
}

const (
	insertCounterSQL     = `INSERT INTO counter (country, city, value) VALUES (?, ?, 0) ON CONFLICT DO NOTHING`
	incrementCounterSQL  = `UPDATE counter SET value = value + 1 WHERE country = ? AND city = ?`
	insertCoordinatesSQL = `INSERT INTO coordinates (lat, long, label) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`

	selectCountersSQL    = `SELECT country, city, value FROM counter ORDER BY value DESC, country, city`
	selectCoordinatesSQL = `SELECT label, lat, long FROM coordinates ORDER BY label, lat, long`
)

// Statements：一次访问对应的三条语句，顺序固定
func Statements(loc locate.Location) []store.Statement {
	return []store.Statement{
		store.NewStatement(insertCounterSQL, loc.Country, loc.City),
		store.NewStatement(incrementCounterSQL, loc.Country, loc.City),
		store.NewStatement(insertCoordinatesSQL, loc.Lat, loc.Long, loc.Label()),
	}
}

// RecordVisit：以单个原子批次提交三条语句
// 约束：要么全部生效要么全部不生效；失败原样返回，不重试其中任何子集
func RecordVisit(ctx context.Context, st Store, loc locate.Location) error {
	if err := st.ExecuteBatch(ctx, Statements(loc)); err != nil {
		return err
	}
	logger.L().Debug("visit_recorded", "country", loc.Country, "city", loc.City, "label", loc.Label())
	return nil
}

// FetchCounters：读取全部计数行，列序 country, city, value
func FetchCounters(ctx context.Context, st Store) (store.Rows, error) {
	return st.Execute(ctx, selectCountersSQL)
}

// FetchCoordinates：读取全部坐标行，列序 label, lat, long
func FetchCoordinates(ctx context.Context, st Store) (store.Rows, error) {
	return st.Execute(ctx, selectCoordinatesSQL)
}
