package image

import "github.com/gabriel-vasile/mimetype"

// GeneratedImage owns the bytes returned by the inference API.
type GeneratedImage struct {
	Data      []byte
	MIMEType  string
	Extension string
}

func NewGeneratedImage(data []byte) GeneratedImage {
	mt := mimetype.Detect(data)
	return GeneratedImage{
		Data:      data,
		MIMEType:  mt.String(),
		Extension: mt.Extension(),
	}
}
