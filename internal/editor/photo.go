package editor

import (
	"encoding/base64"
	"fmt"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
)

// MaxPhotoBytes is the advertised and enforced photo upload ceiling.
const MaxPhotoBytes = 2 << 20 // 2 MiB

// AttachPhoto embeds an uploaded image as a self-contained data URI in
// the personal info block. Oversized payloads are rejected with a
// user-facing error and the document is returned unchanged; there is
// no external object storage.
func AttachPhoto(doc resume.Document, data []byte, mimeType string) (resume.Document, error) {
	if len(data) > MaxPhotoBytes {
		return doc, errors.NewValidationError(errors.ErrCodePhotoTooLarge,
			fmt.Sprintf("photo is %d bytes; the limit is %d bytes (2MB)", len(data), MaxPhotoBytes), nil)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	out := resume.Clone(doc)
	out.PersonalInfo.PhotoURL = fmt.Sprintf("data:%s;base64,%s",
		mimeType, base64.StdEncoding.EncodeToString(data))
	return out, nil
}

// RemovePhoto clears the embedded photo.
func RemovePhoto(doc resume.Document) resume.Document {
	out := resume.Clone(doc)
	out.PersonalInfo.PhotoURL = ""
	return out
}
