package geo

import (
	"context"
	"strings"
	"sync"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
)

// IP2RegionSource：ip2region v4 xdb 本地库，只提供国家与城市，无坐标
// 约束：文件模式 Searcher 共享文件句柄，查询需串行
type IP2RegionSource struct {
	mu sync.Mutex
	v4 *xdb.Searcher
}

func OpenIP2Region(v4Path string) (*IP2RegionSource, error) {
	s, err := xdb.NewWithFileOnly(xdb.IPv4, v4Path)
	if err != nil {
		return nil, err
	}
	return &IP2RegionSource{v4: s}, nil
}

func (s *IP2RegionSource) Name() string { return "ip2region" }

func (s *IP2RegionSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v4.Close()
	return nil
}

func (s *IP2RegionSource) Lookup(ctx context.Context, ip string) (Result, error) {
	if ip == "" || strings.Contains(ip, ":") {
		return Result{}, ErrBadAddress
	}
	s.mu.Lock()
	region, err := s.v4.SearchByStr(ip)
	s.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	return parseRegion(region), nil
}

// parseRegion：国家|区域|省份|城市|ISP，"0" 与 unknown 视为缺失
// 约束：国家名换算为 ISO 3166-1 alpha-2，与其他数据源的计数键一致；表中没有的名称原样保留
func parseRegion(s string) Result {
	parts := strings.Split(s, "|")
	var r Result
	if len(parts) > 0 {
		r.Country = countryCode(clean(parts[0]))
	}
	if len(parts) > 3 {
		r.City = clean(parts[3])
	}
	if r.City == "" && len(parts) > 2 {
		r.City = clean(parts[2])
	}
	return r
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" || strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}

// countryISO：ip2region 数据中常见的中英文国家名
var countryISO = map[string]string{
	"中国": "CN", "China": "CN",
	"香港": "HK", "Hong Kong": "HK",
	"澳门": "MO", "Macau": "MO",
	"台湾": "TW", "Taiwan": "TW",
	"美国": "US", "United States": "US",
	"加拿大": "CA", "Canada": "CA",
	"墨西哥": "MX", "Mexico": "MX",
	"巴西": "BR", "Brazil": "BR",
	"阿根廷": "AR", "Argentina": "AR",
	"英国": "GB", "United Kingdom": "GB",
	"爱尔兰": "IE", "Ireland": "IE",
	"法国": "FR", "France": "FR",
	"德国": "DE", "Germany": "DE",
	"荷兰": "NL", "Netherlands": "NL",
	"比利时": "BE", "Belgium": "BE",
	"瑞士": "CH", "Switzerland": "CH",
	"奥地利": "AT", "Austria": "AT",
	"意大利": "IT", "Italy": "IT",
	"西班牙": "ES", "Spain": "ES",
	"葡萄牙": "PT", "Portugal": "PT",
	"瑞典": "SE", "Sweden": "SE",
	"挪威": "NO", "Norway": "NO",
	"丹麦": "DK", "Denmark": "DK",
	"芬兰": "FI", "Finland": "FI",
	"波兰": "PL", "Poland": "PL",
	"捷克": "CZ", "Czech Republic": "CZ",
	"乌克兰": "UA", "Ukraine": "UA",
	"俄罗斯": "RU", "Russia": "RU",
	"土耳其": "TR", "Turkey": "TR",
	"以色列": "IL", "Israel": "IL",
	"阿联酋": "AE", "United Arab Emirates": "AE",
	"沙特阿拉伯": "SA", "Saudi Arabia": "SA",
	"印度": "IN", "India": "IN",
	"日本": "JP", "Japan": "JP",
	"韩国": "KR", "South Korea": "KR",
	"新加坡": "SG", "Singapore": "SG",
	"马来西亚": "MY", "Malaysia": "MY",
	"泰国": "TH", "Thailand": "TH",
	"越南": "VN", "Vietnam": "VN",
	"菲律宾": "PH", "Philippines": "PH",
	"印度尼西亚": "ID", "Indonesia": "ID",
	"澳大利亚": "AU", "Australia": "AU",
	"新西兰": "NZ", "New Zealand": "NZ",
	"南非": "ZA", "South Africa": "ZA",
	"埃及": "EG", "Egypt": "EG",
}

func countryCode(name string) string {
	if code, ok := countryISO[name]; ok {
		return code
	}
	return name
}
