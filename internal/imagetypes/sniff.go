package imagetypes

import (
	"os"
)

// Format identifies an image container recognized by its magic bytes.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatHEIF    Format = "heif"
	FormatAVIF    Format = "avif"
	FormatJXL     Format = "jxl"
	FormatUnknown Format = "unknown"
)

// sniffLen is how many leading bytes the sniffer needs. The longest
// signature checked (ISO-BMFF ftyp brand) ends at byte 12.
const sniffLen = 32

// DetectFormat reads the first bytes of the file at path and identifies
// the container. Extension is deliberately ignored; renamed files are
// common in folders curated by hand.
func DetectFormat(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer file.Close()

	header := make([]byte, sniffLen)
	n, err := file.Read(header)
	if err != nil {
		return FormatUnknown, err
	}

	return DetectFormatBytes(header[:n]), nil
}

// DetectFormatBytes identifies the container from leading bytes already
// in memory. Returns FormatUnknown when no signature matches.
func DetectFormatBytes(header []byte) Format {
	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return FormatJPEG

	case len(header) >= 8 && header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47:
		return FormatPNG

	case len(header) >= 4 && header[0] == 0x47 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x38:
		return FormatGIF

	case len(header) >= 12 && header[0] == 0x52 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x46 &&
		header[8] == 0x57 && header[9] == 0x45 && header[10] == 0x42 && header[11] == 0x50:
		return FormatWebP

	case len(header) >= 2 && header[0] == 0x42 && header[1] == 0x4D:
		return FormatBMP

	case len(header) >= 4 && ((header[0] == 0x49 && header[1] == 0x49 && header[2] == 0x2A && header[3] == 0x00) ||
		(header[0] == 0x4D && header[1] == 0x4D && header[2] == 0x00 && header[3] == 0x2A)):
		return FormatTIFF

	case len(header) >= 12 && header[4] == 0x66 && header[5] == 0x74 && header[6] == 0x79 && header[7] == 0x70:
		brand := string(header[8:12])
		if brand == "heic" || brand == "heix" || brand == "hevc" || brand == "hevx" || brand == "mif1" || brand == "msf1" {
			return FormatHEIF
		}
		if brand == "avif" || brand == "avis" {
			return FormatAVIF
		}
		return FormatUnknown

	case len(header) >= 2 && header[0] == 0xFF && header[1] == 0x0A:
		return FormatJXL

	case len(header) >= 12 && header[0] == 0x00 && header[1] == 0x00 && header[2] == 0x00 && header[3] == 0x0C &&
		header[4] == 0x4A && header[5] == 0x58 && header[6] == 0x4C && header[7] == 0x20:
		return FormatJXL
	}

	return FormatUnknown
}

// SoftwareDecodable reports whether the pure-Go decoder set registered by
// the software strategy implements this container. When it does and the
// bitstream still fails to decode, the file is corrupt rather than merely
// exotic.
func SoftwareDecodable(f Format) bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatGIF, FormatWebP, FormatBMP, FormatTIFF:
		return true
	}
	return false
}
