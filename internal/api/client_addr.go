package api

import (
	"net/http"
	"strings"
)

// 文档注释：获取访问者地址（ip 或 ip:port，端口由位置解析层剥离）
// 背景：部署在反向代理之后时，连接远端地址是代理本身；优先读取可配置的转发头。
// 约束：转发头取第一跳；Forwarded 头按 for= 参数解析；头部可被客户端伪造，须由网关覆盖。
func clientAddr(r *http.Request, header string) string {
	if header != "" {
		if x := strings.TrimSpace(r.Header.Get(header)); x != "" {
			if strings.EqualFold(header, "forwarded") {
				if y := forwardedFor(x); y != "" {
					return y
				}
			} else if y := strings.TrimSpace(strings.Split(x, ",")[0]); y != "" {
				return y
			}
		}
	}
	return r.RemoteAddr
}

// forwardedFor：从 RFC 7239 Forwarded 头中取第一个 for= 值
func forwardedFor(x string) string {
	i := strings.Index(strings.ToLower(x), "for=")
	if i < 0 {
		return ""
	}
	y := x[i+4:]
	if p := strings.IndexByte(y, ';'); p >= 0 {
		y = y[:p]
	}
	if p := strings.IndexByte(y, ','); p >= 0 {
		y = y[:p]
	}
	return strings.Trim(y, "\" ")
}
