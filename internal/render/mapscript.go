package render

import (
	"strconv"
	"strings"
	"visit-map/internal/store"

	"github.com/goccy/go-json"
)

const mapHead = `
  <script src="https://cdnjs.cloudflare.com/ajax/libs/p5.js/0.5.16/p5.min.js" type="text/javascript"></script>
  <script src="https://unpkg.com/mappa-mundi/dist/mappa.js" type="text/javascript"></script>
  <script>
    let myMap;
    let canvas;
    const mappa = new Mappa('Leaflet');
    const options = {
      lat: 0,
      lng: 0,
      zoom: 1,
      style: "http://{s}.tile.osm.org/{z}/{x}/{y}.png"
    }
    function setup(){
      canvas = createCanvas(640,480);
      myMap = mappa.tileMap(options);
      myMap.overlay(canvas)
      fill(200, 100, 100);
      myMap.onChange(drawPoint);
    }
    function draw(){
    }
    function drawPoint(){
      clear();
      let point;
`

const mapTail = "    }\n  </script>\n"

// Point：地图上的一个数据点
type Point struct {
	Lat   float64
	Long  float64
	Label string
}

// Points：按列名 lat/long/label 取值；坐标不是数值的行被跳过
func Points(rows store.Rows) []Point {
	li, gi, ti := rows.Index("lat"), rows.Index("long"), rows.Index("label")
	if li < 0 || gi < 0 {
		return nil
	}
	var out []Point
	for _, row := range rows.Values {
		if li >= len(row) || gi >= len(row) {
			continue
		}
		lat, ok1 := toFloat(row[li])
		lng, ok2 := toFloat(row[gi])
		if !ok1 || !ok2 {
			continue
		}
		p := Point{Lat: lat, Long: lng}
		if ti >= 0 && ti < len(row) {
			p.Label = Cell(row[ti])
		}
		out = append(out, p)
	}
	return out
}

// MapScript：每个坐标行输出一组 latLngToPixel/ellipse/text 语句；零行时输出不含数据点的脚本
func MapScript(rows store.Rows) string {
	var b strings.Builder
	b.WriteString(mapHead)
	for _, p := range Points(rows) {
		b.WriteString("      point = myMap.latLngToPixel(")
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
		b.WriteString(", ")
		b.WriteString(strconv.FormatFloat(p.Long, 'f', -1, 64))
		b.WriteString(");\n")
		b.WriteString("      ellipse(point.x, point.y, 10, 10);\n")
		b.WriteString("      text(")
		b.WriteString(jsString(p.Label))
		b.WriteString(", point.x, point.y);\n")
	}
	b.WriteString(mapTail)
	return b.String()
}

// jsString：JSON 字符串字面量即合法的 JS 字符串；再转义 <、>、& 与行分隔符，标注不会闭合 script
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return jsEscaper.Replace(string(b))
}

var jsEscaper = strings.NewReplacer(
	"<", `\u003c`,
	">", `\u003e`,
	"&", `\u0026`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	}
	return 0, false
}
