package visit

import (
	"context"
	"time"
	"visit-map/internal/locate"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"
	"visit-map/internal/migrate"
	"visit-map/internal/render"
)

const (
	StageBootstrap = "bootstrap"
	StageRecord    = "record"
)

// StageError：中止请求的流程阶段及原因
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Service：每个请求独立执行的线性流程，不在请求之间保存可变状态
type Service struct {
	st      Store
	res     locate.Resolver
	timeout time.Duration
}

func NewService(st Store, res locate.Resolver, timeout time.Duration) *Service {
	return &Service{st: st, res: res, timeout: timeout}
}

// Serve：建表 → 解析位置 → 原子写入 → 读计数 → 读坐标 → 渲染
// 约束：各阶段顺序等待完成，整体受 timeout 约束；建表或写入失败返回 *StageError；
// 读取失败只替换对应页面区块
func (s *Service) Serve(ctx context.Context, clientAddr string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := migrate.EnsureSchema(ctx, s.st); err != nil {
		return "", &StageError{Stage: StageBootstrap, Err: err}
	}
	loc := s.res.Resolve(ctx, clientAddr)
	if err := RecordVisit(ctx, s.st, loc); err != nil {
		return "", &StageError{Stage: StageRecord, Err: err}
	}
	metrics.VisitsTotal.Inc()

	var counters, coords render.Section
	counters.Rows, counters.Err = FetchCounters(ctx, s.st)
	if counters.Err != nil {
		metrics.StageErrorsTotal.WithLabelValues("read_counters").Inc()
		logger.L().Error("read_counters_error", "err", counters.Err)
	}
	coords.Rows, coords.Err = FetchCoordinates(ctx, s.st)
	if coords.Err != nil {
		metrics.StageErrorsTotal.WithLabelValues("read_coordinates").Inc()
		logger.L().Error("read_coordinates_error", "err", coords.Err)
	}
	return render.Page(counters, coords), nil
}
