package emu

// Resolve applies the configured colour effect to the top pixel of a
// position, given the pixel directly below it, and returns the final colour.
func (b *BlendControl) Resolve(lower, top uint32) uint16 {
	if top&b.Target1 == 0 {
		return pixelColor(top)
	}
	switch b.Effect {
	case EffectAlphaBlend:
		if lower&b.Target2 != 0 {
			return alphaBlend(pixelColor(top), pixelColor(lower), b.EVA, b.EVB)
		}
	case EffectBrighten:
		return brighten(pixelColor(top), b.EVY)
	case EffectDarken:
		return darken(pixelColor(top), b.EVY)
	}
	return pixelColor(top)
}

// ResolveSpriteSemiTransparent is Resolve for a semi-transparent OBJ pixel
// on top. Such pixels blend with any second target regardless of the effect
// type and only fall back to brighten/darken when nothing below is a
// second target.
func (b *BlendControl) ResolveSpriteSemiTransparent(lower, top uint32) uint16 {
	if lower&b.Target2 != 0 {
		return alphaBlend(pixelColor(top), pixelColor(lower), b.EVA, b.EVB)
	}
	if top&b.Target1 != 0 {
		switch b.Effect {
		case EffectBrighten:
			return brighten(pixelColor(top), b.EVY)
		case EffectDarken:
			return darken(pixelColor(top), b.EVY)
		}
	}
	return pixelColor(top)
}

// alphaBlend mixes two RGB555 colours channel by channel with weights in
// sixteenths, saturating at 31.
func alphaBlend(upper, lower uint16, eva, evb uint8) uint16 {
	var out uint16
	for shift := uint(0); shift < 15; shift += 5 {
		u := (upper >> shift) & 0x1F
		l := (lower >> shift) & 0x1F
		c := (u*uint16(eva))>>4 + (l*uint16(evb))>>4
		if c > 0x1F {
			c = 0x1F
		}
		out |= c << shift
	}
	return out
}

// brighten moves each channel towards white by evy/16.
func brighten(color uint16, evy uint8) uint16 {
	var out uint16
	for shift := uint(0); shift < 15; shift += 5 {
		c := (color >> shift) & 0x1F
		c += ((0x1F - c) * uint16(evy)) >> 4
		out |= c << shift
	}
	return out
}

// darken moves each channel towards black by evy/16.
func darken(color uint16, evy uint8) uint16 {
	var out uint16
	for shift := uint(0); shift < 15; shift += 5 {
		c := (color >> shift) & 0x1F
		c = (c * (16 - uint16(evy))) >> 4
		out |= c << shift
	}
	return out
}
