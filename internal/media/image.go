package media

import (
	"strings"

	"github.com/goliatone/go-gitcontent/internal/content"
)

// ImageSource picks the displayable URL for an image item. An explicit
// imageType wins; otherwise image, then externalUrl, are tried. The result is
// empty when nothing usable is set.
func (r *Resolver) ImageSource(meta content.Metadata) string {
	imageType := strings.TrimSpace(meta.String(content.KeyImageType))
	external := strings.TrimSpace(meta.String(content.KeyExternalURL))
	upload := strings.TrimSpace(meta.String(content.KeyUploadImage))

	switch {
	case imageType == content.ImageTypeURL && external != "":
		return external
	case imageType == content.ImageTypeUpload && upload != "":
		return r.Resolve(upload)
	}
	if image := strings.TrimSpace(meta.String(content.KeyImage)); image != "" {
		return r.Resolve(image)
	}
	return external
}

// AltText returns altText, description, title or "Image", whichever is set
// first.
func AltText(meta content.Metadata) string {
	for _, key := range []string{content.KeyAltText, content.KeyDescription, content.KeyTitle} {
		if value := strings.TrimSpace(meta.String(key)); value != "" {
			return value
		}
	}
	return "Image"
}
