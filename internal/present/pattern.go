package present

var barColors = [][4]byte{
	{0xc0, 0xc0, 0xc0, 0xff}, // grey (B, G, R, A)
	{0x00, 0xc0, 0xc0, 0xff}, // yellow
	{0xc0, 0xc0, 0x00, 0xff}, // cyan
	{0x00, 0xc0, 0x00, 0xff}, // green
	{0xc0, 0x00, 0xc0, 0xff}, // magenta
	{0x00, 0x00, 0xc0, 0xff}, // red
	{0xc0, 0x00, 0x00, 0xff}, // blue
}

// TestPattern renders BGRA colour bars with a white marker column that
// advances with frame, so dropped or frozen frames are visible.
func TestPattern(width, height uint32, frame uint64) Texture {
	pix := make([]byte, int(width)*int(height)*4)
	if width == 0 || height == 0 {
		return Texture{Memory: frame + 1, Format: FormatBGRA8}
	}
	marker := uint32(frame*4) % width
	for y := uint32(0); y < height; y++ {
		row := pix[int(y)*int(width)*4:]
		for x := uint32(0); x < width; x++ {
			c := barColors[int(x)*len(barColors)/int(width)]
			if x >= marker && x < marker+4 {
				c = [4]byte{0xff, 0xff, 0xff, 0xff}
			}
			copy(row[x*4:x*4+4], c[:])
		}
	}
	return Texture{
		Memory: frame + 1,
		Width:  width,
		Height: height,
		Format: FormatBGRA8,
		Pixels: pix,
	}
}
