package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileType classifies an attachment by extension
type FileType string

const (
	FileTypePhoto    FileType = "photo"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
)

var fileTypeByExtension = map[string]FileType{
	".jpg": FileTypePhoto, ".jpeg": FileTypePhoto, ".png": FileTypePhoto,
	".gif": FileTypePhoto, ".bmp": FileTypePhoto, ".tiff": FileTypePhoto,
	".webp": FileTypePhoto, ".heic": FileTypePhoto,

	".pdf": FileTypeDocument, ".doc": FileTypeDocument, ".docx": FileTypeDocument,
	".txt": FileTypeDocument, ".rtf": FileTypeDocument, ".odt": FileTypeDocument,

	".mp4": FileTypeVideo, ".mov": FileTypeVideo, ".avi": FileTypeVideo,
	".mkv": FileTypeVideo, ".webm": FileTypeVideo,

	".mp3": FileTypeAudio, ".wav": FileTypeAudio, ".m4a": FileTypeAudio,
	".flac": FileTypeAudio, ".ogg": FileTypeAudio,
}

// FileTypeForName returns the FileType for a file name, defaulting to document
func FileTypeForName(name string) FileType {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := fileTypeByExtension[ext]; ok {
		return t
	}
	return FileTypeDocument
}

// Attachment is a file associated with a person, unique per (person, file name)
type Attachment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TreeID   uuid.UUID `json:"tree_id" db:"tree_id"`
	PersonID uuid.UUID `json:"person_id" db:"person_id"`
	FileName string    `json:"file_name" db:"file_name"`
	FileType FileType  `json:"file_type" db:"file_type"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateAttachmentRequest is the request for creating an attachment
type CreateAttachmentRequest struct {
	PersonID uuid.UUID `json:"person_id" validate:"required"`
	FileName string    `json:"file_name" validate:"required"`
	FileType FileType  `json:"file_type" validate:"required,oneof=photo document video audio"`
}
