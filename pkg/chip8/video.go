package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

var (
	DefaultOnColor  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	DefaultOffColor = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

// FramebufferRGBA expands the 64×32 framebuffer into an RGBA8888 byte slice
// (length 64*32*4) using on for lit and off for unlit pixels.
func (c *CPU) FramebufferRGBA(on, off color.RGBA) []byte {
	return FrameRGBA(&c.Video, on, off)
}

// FrameRGBA is FramebufferRGBA for a framebuffer copied out with Frame.
func FrameRGBA(frame *[VideoWidth * VideoHeight]uint32, on, off color.RGBA) []byte {
	pixels := make([]byte, VideoWidth*VideoHeight*4)
	for i, v := range frame {
		px := off
		if v == PixelOn {
			px = on
		}
		pixels[i*4+0] = px.R
		pixels[i*4+1] = px.G
		pixels[i*4+2] = px.B
		pixels[i*4+3] = px.A
	}
	return pixels
}

// FramebufferImage returns the framebuffer as an *image.RGBA in the default
// colors.
func (c *CPU) FramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.FramebufferRGBA(DefaultOnColor, DefaultOffColor),
		Stride: VideoWidth * 4,
		Rect:   image.Rect(0, 0, VideoWidth, VideoHeight),
	}
}

// SaveScreenshot encodes the framebuffer as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.FramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
