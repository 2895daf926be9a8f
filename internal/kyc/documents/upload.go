// Package documents validates uploaded KYC files and stores them in a blob
// backend.
package documents

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
)

// DefaultMaxBytes is the per-file ceiling (5 MiB).
const DefaultMaxBytes int64 = 5 << 20

// allowed maps each accepted extension to the content type its bytes must
// sniff as.
var allowed = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Upload is a received file.
type Upload struct {
	Filename string
	Content  []byte
}

// Size is the byte length of the content.
func (u Upload) Size() int64 { return int64(len(u.Content)) }

// Validated is an upload that passed Validate.
type Validated struct {
	Upload
	Ext         string
	ContentType string
}

// Validate enforces the size ceiling and checks that both the extension and
// the sniffed content are pdf, jpeg or png.
func Validate(u Upload, maxBytes int64) (Validated, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(u.Content) == 0 {
		return Validated{}, dErrors.New(dErrors.CodeInvalidUpload, "file is empty")
	}
	if u.Size() > maxBytes {
		return Validated{}, dErrors.New(dErrors.CodeInvalidUpload,
			fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20))
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	want, ok := allowed[ext]
	if !ok {
		return Validated{}, dErrors.New(dErrors.CodeInvalidUpload, "file must be a pdf, jpg, jpeg or png")
	}
	detected := mimetype.Detect(u.Content)
	if !detected.Is(want) {
		return Validated{}, dErrors.New(dErrors.CodeInvalidUpload,
			fmt.Sprintf("file content %s does not match extension %s", detected.String(), ext))
	}

	return Validated{Upload: u, Ext: ext, ContentType: want}, nil
}

// ObjectKey returns a fresh storage key for a document. Keys are never
// reused, so a replacement never overwrites the file it replaces.
func ObjectKey(expertID id.ExpertID, slot models.Slot, ext string) string {
	name := strings.NewReplacer("[", "-", "]", "").Replace(slot.String())
	return fmt.Sprintf("kyc/%s/%s/%s%s", expertID, name, uuid.NewString(), ext)
}
