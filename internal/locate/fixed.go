package locate

import (
	"context"
	"math/rand/v2"
)

// Samples：固定样本集，无地理信号时使用
var Samples = []Location{
	{Code: "WAW", Country: "PL", City: "Warsaw", Lat: 52.22959, Long: 21.0067},
	{Code: "EWR", Country: "US", City: "Newark", Lat: 42.99259, Long: -81.3321},
	{Code: "HAM", Country: "DE", City: "Hamburg", Lat: 50.118801, Long: 7.684300},
	{Code: "HEL", Country: "FI", City: "Helsinki", Lat: 60.3183, Long: 24.9497},
	{Code: "NSW", Country: "AU", City: "Sydney", Lat: -33.9500, Long: 151.1819},
}

// FixedSample：每次请求独立地从 Samples 中均匀随机选取
type FixedSample struct {
	pick func(n int) int
}

// NewFixedSample：pick 为 nil 时使用 math/rand/v2 的全局源（并发安全）
func NewFixedSample(pick func(n int) int) *FixedSample {
	if pick == nil {
		pick = rand.IntN
	}
	return &FixedSample{pick: pick}
}

func (f *FixedSample) Resolve(ctx context.Context, clientAddr string) Location {
	return Samples[f.pick(len(Samples))]
}
