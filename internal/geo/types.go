// 包 geo：按网络地址查询大致地理位置；各数据源均为尽力而为，缺失字段由调用方决定如何兜底
package geo

import (
	"context"
	"errors"
	"fmt"
)

// Result：数据源对某地址的查询结果；Lat/Lon 仅在对应 Has 标记为 true 时有效
type Result struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	HasLat  bool    `json:"has_lat"`
	HasLon  bool    `json:"has_lon"`
}

func (r Result) Empty() bool {
	return r.Country == "" && r.City == "" && !r.HasLat && !r.HasLon
}

type Source interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Result, error)
}

var (
	ErrNotFound   = errors.New("geo: no data for address")
	ErrBadAddress = errors.New("geo: invalid address")
)

// StatusError：外部服务返回非 200，或在响应体中声明失败
type StatusError struct {
	Source string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("geo: %s: status %d: %s", e.Source, e.Code, e.Msg)
	}
	return fmt.Sprintf("geo: %s: status %d", e.Source, e.Code)
}

// FormatError：响应体无法解析
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string { return "geo: " + e.Source + ": malformed response: " + e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }
