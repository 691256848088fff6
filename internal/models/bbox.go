package models

import (
	"strconv"
	"strings"
)

// BoundingBox ограничивающий прямоугольник слоя в координатах его SRS
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBoundingBox создает прямоугольник из четырёх координат.
// Порядок minx <= maxx, miny <= maxy не проверяется.
func NewBoundingBox(minX, minY, maxX, maxY float64) BoundingBox {
	return BoundingBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// String возвращает "minx,miny,maxx,maxy" в десятичной записи без экспоненты
func (b BoundingBox) String() string {
	parts := []string{
		formatCoord(b.MinX),
		formatCoord(b.MinY),
		formatCoord(b.MaxX),
		formatCoord(b.MaxY),
	}
	return strings.Join(parts, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
