package render

import (
	"html"
	"strings"
	"visit-map/internal/store"
)

// Section：页面中的一块；Err 非空时以错误文本替代该块内容
type Section struct {
	Rows store.Rows
	Err  error
}

// Page：地图脚本 + 计分板 + 页脚
func Page(counters, coordinates Section) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Visit map</title>\n</head>\n<body>\n")
	if coordinates.Err != nil {
		b.WriteString("<p>")
		b.WriteString(ErrorBody(coordinates.Err))
		b.WriteString("</p>\n")
	} else {
		b.WriteString(MapScript(coordinates.Rows))
	}
	b.WriteString("<p>Scoreboard:</p>\n")
	if counters.Err != nil {
		b.WriteString("<p>")
		b.WriteString(ErrorBody(counters.Err))
		b.WriteString("</p>\n")
	} else {
		b.WriteString(Table(counters.Rows))
		b.WriteString("\n")
	}
	b.WriteString("<footer>Map data from OpenStreetMap (https://tile.osm.org/)</footer>\n</body>\n</html>\n")
	return b.String()
}

// ErrorBody：错误的纯文本呈现（已转义）
func ErrorBody(err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return "Error: " + html.EscapeString(msg)
}
