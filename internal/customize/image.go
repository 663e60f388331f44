package customize

import (
	"encoding/base64"
	"fmt"
	"io"

	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes caps artwork uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// encodeImage reads an upload and returns it as a data URL. The content type
// is sniffed from the bytes; the client-declared type is ignored.
func encodeImage(r io.Reader, maxBytes int64) (string, error) {
	if r == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image upload is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read uploaded image")
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "uploaded image is empty")
	}
	if int64(len(data)) > maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("uploaded image exceeds %d bytes", maxBytes))
	}

	detected := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return fmt.Sprintf("data:%s;base64,%s", allowed, base64.StdEncoding.EncodeToString(data)), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is not a supported image").
		WithDetails(map[string]any{"detected": detected.String(), "allowed": allowedImageTypes})
}
