package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFileTypeForName(t *testing.T) {

	t.Run("photo", func(t *testing.T) {
		assert.Equal(t, FileTypePhoto, FileTypeForName("wedding.jpg"))
		assert.Equal(t, FileTypePhoto, FileTypeForName("portrait.PNG"))
		assert.Equal(t, FileTypePhoto, FileTypeForName("scan.heic"))
	})

	t.Run("document", func(t *testing.T) {
		assert.Equal(t, FileTypeDocument, FileTypeForName("birth_certificate.pdf"))
		assert.Equal(t, FileTypeDocument, FileTypeForName("notes.txt"))
	})

	t.Run("video", func(t *testing.T) {
		assert.Equal(t, FileTypeVideo, FileTypeForName("interview.mp4"))
		assert.Equal(t, FileTypeVideo, FileTypeForName("reunion.MOV"))
	})

	t.Run("audio", func(t *testing.T) {
		assert.Equal(t, FileTypeAudio, FileTypeForName("oral_history.mp3"))
	})

	t.Run("unknown extension defaults to document", func(t *testing.T) {
		assert.Equal(t, FileTypeDocument, FileTypeForName("archive.zip"))
		assert.Equal(t, FileTypeDocument, FileTypeForName("no_extension"))
	})

	t.Run("nested path uses the file extension", func(t *testing.T) {
		assert.Equal(t, FileTypeVideo, FileTypeForName("wedding/clip.mp4"))
	})
}

func TestGenderFromSex(t *testing.T) {

	t.Run("male", func(t *testing.T) {
		gender, ok := GenderFromSex("M")
		assert.True(t, ok)
		assert.Equal(t, GenderMale, gender)
	})

	t.Run("female", func(t *testing.T) {
		gender, ok := GenderFromSex("F")
		assert.True(t, ok)
		assert.Equal(t, GenderFemale, gender)
	})

	t.Run("unrecognized value is explicitly unknown", func(t *testing.T) {
		gender, ok := GenderFromSex("X")
		assert.True(t, ok)
		assert.Equal(t, GenderUnknown, gender)
	})

	t.Run("absent value is not explicit", func(t *testing.T) {
		gender, ok := GenderFromSex("")
		assert.False(t, ok)
		assert.Equal(t, GenderUnknown, gender)
	})
}

func TestPersonString(t *testing.T) {

	t.Run("with a name", func(t *testing.T) {
		p := &Person{
			ID:    uuid.New(),
			Names: []*Name{{First: "John", Last: "Smith"}},
		}
		assert.Equal(t, fmt.Sprintf("John Smith (%s)", p.ID), p.String())
	})

	t.Run("without a name", func(t *testing.T) {
		p := &Person{ID: uuid.New()}
		assert.Equal(t, p.ID.String(), p.String())
	})
}
