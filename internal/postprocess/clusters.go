package postprocess

import "image"

// RemoveSmallClusters clears 8-connected groups of visible pixels holding
// less than minRatio of all visible pixels, such as stray faces far from the
// model. It returns the cleaned image and the number of pixels cleared; img
// itself is returned when nothing changes.
func RemoveSmallClusters(img *image.NRGBA, minRatio float64) (*image.NRGBA, int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	visible := func(x, y int) bool { return img.Pix[y*img.Stride+x*4+3] > 0 }

	labels, sizes, total := label(w, h, visible)
	if len(sizes) <= 1 {
		return img, 0
	}
	minSize := int(float64(total) * minRatio)

	var out *image.NRGBA
	cleared := 0
	for i, l := range labels {
		if l < 0 || sizes[l] >= minSize {
			continue
		}
		if out == nil {
			out = image.NewNRGBA(img.Rect)
			copy(out.Pix, img.Pix)
		}
		x, y := i%w, i/w
		clear(out.Pix[y*out.Stride+x*4 : y*out.Stride+x*4+4])
		cleared++
	}
	if out == nil {
		return img, 0
	}
	return out, cleared
}

var neighbors = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// label assigns a component id to every visible pixel by breadth-first
// flood fill. Invisible pixels get -1.
func label(w, h int, visible func(x, y int) bool) (labels []int32, sizes []int, total int) {
	labels = make([]int32, w*h)
	for i := range labels {
		labels[i] = -1
	}
	queue := make([]int, 0, 1024)
	for start := range labels {
		sx, sy := start%w, start/w
		if labels[start] >= 0 || !visible(sx, sy) {
			continue
		}
		id := int32(len(sizes))
		labels[start] = id
		queue = append(queue[:0], start)
		size := 0
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			size++
			cx, cy := curr%w, curr/w
			for _, d := range neighbors {
				nx, ny := cx+d.X, cy+d.Y
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if labels[ni] < 0 && visible(nx, ny) {
					labels[ni] = id
					queue = append(queue, ni)
				}
			}
		}
		sizes = append(sizes, size)
		total += size
	}
	return labels, sizes, total
}
