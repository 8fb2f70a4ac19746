package emu

// Scanline buffers hold packed uint32 pixels. A numerically smaller pixel is
// drawn above a larger one, so the compositor resolves priority with plain
// comparisons.
//
//	bits  0-14  RGB555 colour (red in the low bits, blue in the high bits)
//	bit   15    semi-transparent OBJ pixel
//	bits 16-21  one-hot layer: OBJ, BG0, BG1, BG2, BG3, backdrop
//	bits 23-25  priority 0-3, or 7 for a transparent pixel
//
// OBJ has the lowest layer bit so it wins ties against backgrounds of the
// same priority, and BG0 wins ties against BG1 and so on.
const (
	pixelColorMask       = 0x7FFF
	pixelSemiTransparent = 0x8000
	pixelLayerShift      = 16
	pixelLayerMask       = 0x3F << pixelLayerShift
	pixelPriorityShift   = 23

	// pixelTransparent sorts below every real pixel and the backdrop.
	pixelTransparent uint32 = 7 << pixelPriorityShift
)

// Layer ordinals, in tag order.
const (
	LayerOBJ = iota
	LayerBG0
	LayerBG1
	LayerBG2
	LayerBG3
	LayerBackdrop
)

// allLayers has every layer bit set, including the backdrop.
const allLayers uint32 = pixelLayerMask

// LayerMask returns the layer bits for the given layer ordinals, in the form
// taken by PPU.SetLayerFilter.
func LayerMask(layers ...int) uint32 {
	var mask uint32
	for _, layer := range layers {
		mask |= layerBit(layer)
	}
	return mask
}

// AllLayers is the layer filter that hides nothing.
const AllLayers = allLayers

// layerBit returns the one-hot tag bit for a layer ordinal.
func layerBit(layer int) uint32 {
	return 1 << (pixelLayerShift + uint(layer))
}

// layerTag returns the tag bits for a layer drawn at the given priority.
func layerTag(layer int, priority uint8) uint32 {
	return uint32(priority&0x03)<<pixelPriorityShift | layerBit(layer)
}

// makePixel packs a tag and an RGB555 colour.
func makePixel(tag uint32, color uint16) uint32 {
	return tag | uint32(color&pixelColorMask)
}

// pixelColor extracts the RGB555 colour.
func pixelColor(p uint32) uint16 {
	return uint16(p & pixelColorMask)
}

// pixelPriority extracts the priority field (7 for transparent).
func pixelPriority(p uint32) uint8 {
	return uint8((p >> pixelPriorityShift) & 0x07)
}

// pixelLayers extracts the layer bits.
func pixelLayers(p uint32) uint32 {
	return p & pixelLayerMask
}

func isTransparent(p uint32) bool {
	return p >= pixelTransparent
}

// backdropPixel is the pixel shown where every layer is transparent.
func backdropPixel(color uint16) uint32 {
	return makePixel(layerTag(LayerBackdrop, 3), color)
}

// layerMaskFromBits converts the hardware layer bit order used by BLDCNT,
// WININ and WINOUT (BG0, BG1, BG2, BG3, OBJ, backdrop) into tag layer bits.
func layerMaskFromBits(bits uint16) uint32 {
	var mask uint32
	for i, layer := range [...]int{LayerBG0, LayerBG1, LayerBG2, LayerBG3, LayerOBJ, LayerBackdrop} {
		if bits&(1<<uint(i)) != 0 {
			mask |= layerBit(layer)
		}
	}
	return mask
}
