package main

import (
	"image"
	"image/color"
)

// rgbImage adapts Engine.OccupancyImage's flat RGB byte buffer to the
// standard image.Image interface ebiten's texture upload expects.
type rgbImage struct {
	size image.Point
	pix  []byte
}

func (r *rgbImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (r *rgbImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.size.X, r.size.Y)
}

func (r *rgbImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.size.X || y >= r.size.Y {
		return color.RGBA{}
	}
	i := (x + y*r.size.X) * 3
	return color.RGBA{R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: 255}
}
