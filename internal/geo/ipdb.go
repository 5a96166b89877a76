package geo

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"visit-map/internal/logger"

	"github.com/goccy/go-json"
)

type ipdbMeta struct {
	Build     int64          `json:"build"`
	IPVersion uint16         `json:"ip_version"`
	Languages map[string]int `json:"languages"`
	NodeCount int            `json:"node_count"`
	TotalSize int            `json:"total_size"`
	Fields    []string       `json:"fields"`
}

// 文档注释：IPIP IPDB 本地库
// 背景：文件为 4 字节大端元信息长度 + 元信息 JSON + 二叉前缀树节点区 + 叶子数据区；整体读入内存，只读。
// 约束：叶子数据为按语言分段的制表符分隔字段；IPv6 查询仅在 ip_version 含 IPv6 标记时可用。
type IPDBSource struct {
	meta     ipdbMeta
	data     []byte
	v4offset int
	langOff  int
	fieldIdx map[string]int
}

func OpenIPDB(path, lang string) (*IPDBSource, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, errors.New("ipdb: bad size")
	}
	mlen := int(binary.BigEndian.Uint32(body[0:4]))
	if len(body) < 4+mlen {
		return nil, errors.New("ipdb: bad meta length")
	}
	var m ipdbMeta
	if err := json.Unmarshal(body[4:4+mlen], &m); err != nil {
		return nil, &FormatError{Source: "ipdb", Err: err}
	}
	if len(m.Languages) == 0 || len(m.Fields) == 0 {
		return nil, errors.New("ipdb: meta has no languages or fields")
	}
	if len(body) != 4+mlen+m.TotalSize {
		return nil, errors.New("ipdb: total size mismatch")
	}
	if lang == "" {
		lang = "EN"
	}
	off, ok := m.Languages[lang]
	if !ok {
		return nil, errors.New("ipdb: language " + strconv.Quote(lang) + " not in database")
	}
	s := &IPDBSource{meta: m, data: body[4+mlen:], langOff: off, fieldIdx: map[string]int{}}
	for i, f := range m.Fields {
		s.fieldIdx[f] = i
	}
	// IPv4 子树位于 ::ffff:0:0/96 之下：80 个 0 位后接 16 个 1 位
	node := 0
	for i := 0; i < 96 && node < m.NodeCount; i++ {
		if i >= 80 {
			node = s.readNode(node, 1)
		} else {
			node = s.readNode(node, 0)
		}
	}
	s.v4offset = node
	logger.L().Debug("ipdb_open", "build", m.Build, "nodes", m.NodeCount, "v4offset", node, "lang", lang)
	return s, nil
}

func (s *IPDBSource) Name() string { return "ipdb" }

// readNode：每个节点 8 字节，左右指针各 4 字节；越界时原样返回
func (s *IPDBSource) readNode(node, bit int) int {
	off := node*8 + bit*4
	if off+4 > len(s.data) {
		return node
	}
	return int(binary.BigEndian.Uint32(s.data[off : off+4]))
}

// resolve：叶子数据为 uint16 大端长度 + 内容
func (s *IPDBSource) resolve(node int) ([]byte, error) {
	at := node - s.meta.NodeCount + s.meta.NodeCount*8
	if at < 0 || at+2 > len(s.data) {
		return nil, &FormatError{Source: "ipdb", Err: errors.New("leaf out of range")}
	}
	size := int(binary.BigEndian.Uint16(s.data[at : at+2]))
	if at+2+size > len(s.data) {
		return nil, &FormatError{Source: "ipdb", Err: errors.New("leaf size out of range")}
	}
	return s.data[at+2 : at+2+size], nil
}

func (s *IPDBSource) find(p net.IP) (int, error) {
	node, bits := s.v4offset, 32
	addr := p.To4()
	if addr == nil {
		if s.meta.IPVersion&0x02 == 0 {
			return 0, ErrNotFound
		}
		node, bits, addr = 0, 128, p.To16()
	}
	for i := 0; i < bits && node < s.meta.NodeCount; i++ {
		node = s.readNode(node, int(addr[i>>3]>>(7-uint(i%8))&1))
	}
	if node > s.meta.NodeCount {
		return node, nil
	}
	return 0, ErrNotFound
}

func (s *IPDBSource) Lookup(ctx context.Context, ip string) (Result, error) {
	p := net.ParseIP(ip)
	if p == nil {
		return Result{}, ErrBadAddress
	}
	node, err := s.find(p)
	if err != nil {
		return Result{}, err
	}
	raw, err := s.resolve(node)
	if err != nil {
		return Result{}, err
	}
	parts := strings.Split(string(raw), "\t")
	if s.langOff+len(s.meta.Fields) > len(parts) {
		return Result{}, &FormatError{Source: "ipdb", Err: errors.New("short leaf record")}
	}
	return s.toResult(parts[s.langOff : s.langOff+len(s.meta.Fields)]), nil
}

// toResult：优先 country_code，其次 country_name；坐标字段可选
func (s *IPDBSource) toResult(fields []string) Result {
	get := func(name string) string {
		if i, ok := s.fieldIdx[name]; ok {
			return clean(fields[i])
		}
		return ""
	}
	var r Result
	r.Country = get("country_code")
	if r.Country == "" {
		r.Country = get("country_name")
	}
	r.City = get("city_name")
	if r.City == "" {
		r.City = get("region_name")
	}
	if v, err := strconv.ParseFloat(get("latitude"), 64); err == nil {
		r.Lat, r.HasLat = v, true
	}
	if v, err := strconv.ParseFloat(get("longitude"), 64); err == nil {
		r.Lon, r.HasLon = v, true
	}
	return r
}
