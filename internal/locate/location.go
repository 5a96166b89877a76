// 包 locate：为每个请求解析一个完整的位置元组（机场代码/国家/城市/经纬度）
package locate

import (
	"context"
	"fmt"
	"visit-map/internal/config"
	"visit-map/internal/geo"
)

// Location：请求级位置元组，不直接持久化
type Location struct {
	Code    string
	Country string
	City    string
	Lat     float64
	Long    float64
}

// Label：坐标表中的标注，优先机场代码，其次城市
func (l Location) Label() string {
	if l.Code != "" {
		return l.Code
	}
	return l.City
}

// Resolver：Resolve 总是返回全部字段已填充的结果，不返回错误
type Resolver interface {
	Resolve(ctx context.Context, clientAddr string) Location
}

// New：按策略名构建解析器；geo 策略需要至少一个数据源
func New(strategy string, src geo.Source) (Resolver, error) {
	switch strategy {
	case "", config.StrategyFixed:
		return NewFixedSample(nil), nil
	case config.StrategyGeo:
		if src == nil {
			return nil, fmt.Errorf("strategy %q needs a geolocation source", strategy)
		}
		return NewGeoLookup(src), nil
	}
	return nil, fmt.Errorf("unknown location strategy %q", strategy)
}
