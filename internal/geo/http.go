package geo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"visit-map/internal/logger"

	"github.com/goccy/go-json"
)

// 文档注释：外部 HTTP 地理查询数据源
// 约束：endpoint 含 {ip} 占位符时替换，否则把地址追加为最后一段路径；响应需为 JSON，字段 country/countryCode/city/lat/lon，缺失字段不报错
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPSource{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (h *HTTPSource) Name() string { return "http" }

type httpResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

func (h *HTTPSource) URL(ip string) string {
	esc := url.PathEscape(ip)
	if strings.Contains(h.endpoint, "{ip}") {
		return strings.ReplaceAll(h.endpoint, "{ip}", esc)
	}
	return strings.TrimRight(h.endpoint, "/") + "/" + esc
}

func (h *HTTPSource) Lookup(ctx context.Context, ip string) (Result, error) {
	var out Result
	if ip == "" {
		return out, ErrBadAddress
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL(ip), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return out, &StatusError{Source: h.Name(), Code: resp.StatusCode}
	}
	var m httpResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&m); err != nil {
		return out, &FormatError{Source: h.Name(), Err: err}
	}
	if strings.EqualFold(m.Status, "fail") {
		return out, &StatusError{Source: h.Name(), Code: resp.StatusCode, Msg: m.Message}
	}
	out.Country = m.CountryCode
	if out.Country == "" {
		out.Country = m.Country
	}
	out.City = m.City
	if m.Lat != nil {
		out.Lat, out.HasLat = *m.Lat, true
	}
	if m.Lon != nil {
		out.Lon, out.HasLon = *m.Lon, true
	}
	logger.L().Debug("geo_http_resp", "ip", ip, "country", out.Country, "city", out.City, "has_lat", out.HasLat, "has_lon", out.HasLon)
	return out, nil
}
