// 包 render：把查询结果格式化为 HTML 片段；纯函数，不做 I/O，不返回错误
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"visit-map/internal/store"
)

// Table：每个列名一个表头单元格，每行数据一个 <tr>；单元格按纯文本转义
func Table(rows store.Rows) string {
	var b strings.Builder
	b.WriteString(`<table style="border: 1px solid">`)
	b.WriteString("<tr>")
	for _, c := range rows.Columns {
		b.WriteString(`<th style="border: 1px solid">`)
		b.WriteString(html.EscapeString(c))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>")
	for _, row := range rows.Values {
		b.WriteString(`<tr style="border: 1px solid">`)
		for i := range rows.Columns {
			b.WriteString("<td>")
			if i < len(row) {
				b.WriteString(html.EscapeString(Cell(row[i])))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// Cell：单元格文本；浮点数取最短表示，nil 为空串
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
