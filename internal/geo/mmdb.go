package geo

import (
	"context"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// MMDBSource：MaxMind GeoLite2/GeoIP2 City 本地库
type MMDBSource struct {
	r *geoip2.Reader
}

func OpenMMDB(path string) (*MMDBSource, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MMDBSource{r: r}, nil
}

func (m *MMDBSource) Name() string { return "mmdb" }

func (m *MMDBSource) Close() error { return m.r.Close() }

// Metadata：库类型与构建时间，启动日志使用
func (m *MMDBSource) Metadata() maxminddb.Metadata { return m.r.Metadata() }

func (m *MMDBSource) Lookup(ctx context.Context, ip string) (Result, error) {
	var out Result
	p := net.ParseIP(ip)
	if p == nil {
		return out, ErrBadAddress
	}
	rec, err := m.r.City(p)
	if err != nil {
		return out, err
	}
	out.Country = rec.Country.IsoCode
	out.City = rec.City.Names["en"]
	// 库中无坐标时经纬度同为 0
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		out.Lat, out.HasLat = rec.Location.Latitude, true
		out.Lon, out.HasLon = rec.Location.Longitude, true
	}
	return out, nil
}
