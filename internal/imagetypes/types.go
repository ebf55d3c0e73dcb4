package imagetypes

import (
	"path/filepath"
	"strings"
)

// Profile selects the speed/fidelity trade for a decoded raster.
type Profile string

const (
	// ProfilePreview favors speed over fidelity. Used for grid thumbnails
	// and scroll-ahead decoding.
	ProfilePreview Profile = "preview"
	// ProfileFinal favors fidelity over speed. Used for the image under
	// active review.
	ProfileFinal Profile = "final"
)

// Default long-edge targets applied when a request does not name an
// explicit dimension.
const (
	// PreviewMaxDimension bounds the long edge of preview rasters.
	PreviewMaxDimension = 256
	// FinalMaxDimension bounds the long edge of final rasters.
	FinalMaxDimension = 2048
)

// DefaultDimension returns the default long-edge target for a profile.
// Unknown profiles get the preview default, the cheaper of the two.
func (p Profile) DefaultDimension() int {
	if p == ProfileFinal {
		return FinalMaxDimension
	}
	return PreviewMaxDimension
}

// Valid reports whether p is one of the defined profiles.
func (p Profile) Valid() bool {
	return p == ProfilePreview || p == ProfileFinal
}

// ImageExtensions maps file extensions to whether they are candidate image
// formats. Membership means "worth handing to the decode chain", not a
// guarantee that any decoder on the host accepts the file.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
	".jxl":  true,
	".cr2":  true,
	".nef":  true,
	".arw":  true,
	".dng":  true,
	".raw":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	".jxl":  "image/jxl",
	".cr2":  "image/x-canon-cr2",
	".nef":  "image/x-nikon-nef",
	".arw":  "image/x-sony-arw",
	".dng":  "image/x-adobe-dng",
	".raw":  "image/x-raw",
}

// IsSupportedExtension reports whether path carries an extension PhotoSift
// is willing to decode. Pure string inspection, no file I/O; the decode
// chain remains the authority on whether the bytes are actually decodable.
func IsSupportedExtension(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
