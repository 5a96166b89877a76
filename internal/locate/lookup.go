package locate

import (
	"context"
	"visit-map/internal/geo"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"
)

// 兜底值：地理查询缺失字段时使用
const (
	UnknownCountry = "XX"
	UnknownCity    = "Unknown"
)

// GeoLookup：按客户端地址查询外部数据源
// 约束：查询失败或字段缺失时以兜底值补齐，请求继续；地址为空时不发起查询
type GeoLookup struct {
	src geo.Source
}

func NewGeoLookup(src geo.Source) *GeoLookup {
	return &GeoLookup{src: src}
}

func (g *GeoLookup) Resolve(ctx context.Context, clientAddr string) Location {
	ip := StripPort(clientAddr)
	var r geo.Result
	if ip != "" {
		res, err := g.src.Lookup(ctx, ip)
		if err != nil {
			logger.L().Warn("geo_lookup_error", "ip", ip, "source", g.src.Name(), "err", err)
		} else {
			r = res
		}
	}
	loc, filled := fromResult(r)
	if filled {
		metrics.GeoFallbackTotal.Inc()
		logger.L().Debug("geo_fallback", "ip", ip, "country", loc.Country, "city", loc.City)
	}
	return loc
}

// fromResult：补齐缺失字段；filled 表示至少一个字段使用了兜底值
func fromResult(r geo.Result) (Location, bool) {
	loc := Location{Country: r.Country, City: r.City, Lat: r.Lat, Long: r.Lon}
	filled := false
	if loc.Country == "" {
		loc.Country, filled = UnknownCountry, true
	}
	if loc.City == "" {
		loc.City, filled = UnknownCity, true
	}
	if !r.HasLat {
		loc.Lat, filled = 0, true
	}
	if !r.HasLon {
		loc.Long, filled = 0, true
	}
	return loc, filled
}
