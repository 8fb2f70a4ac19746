package emu

// quantizeHorizontal replaces every pixel in each run of size+1 pixels with
// the first pixel of the run. A block size of 1 leaves buf untouched.
func quantizeHorizontal(buf []uint32, size uint8) {
	block := int(size) + 1
	if block == 1 {
		return
	}
	var carried uint32
	for i := range buf {
		if i%block == 0 {
			carried = buf[i]
		} else {
			buf[i] = carried
		}
	}
}

// quantizeSpriteHorizontal applies horizontal mosaic to the first width
// pixels of a sprite's scratch buffer. Hardware latches its first mosaic
// sample before any sprite pixel has been fetched, so the first pixel is
// always transparent; this is reproduced here.
func quantizeSpriteHorizontal(buf []uint32, width int, size uint8) {
	block := int(size) + 1
	if block == 1 || width <= 0 {
		return
	}
	buf[0] = pixelTransparent
	var carried uint32
	for i := 0; i < width; i++ {
		if i%block == 0 {
			carried = buf[i]
		} else {
			buf[i] = carried
		}
	}
}

// mosaicYOffset returns how far line sits below the top of its vertical
// mosaic block.
func mosaicYOffset(line int, size uint8) int {
	return line % (int(size) + 1)
}

// verticalSourceLine returns the line whose data is repeated for the whole
// vertical mosaic block containing line.
func verticalSourceLine(line int, size uint8) int {
	return line - mosaicYOffset(line, size)
}
