package locate

import (
	"net"
	"strings"
)

// StripPort：ip[:port] 去掉端口；支持 [v6]:port 与不带端口的裸 IPv6
func StripPort(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
