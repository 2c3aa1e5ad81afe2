package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader builds a multipart.FileHeader with the given name and content.
// size overrides the reported size when positive.
func createTestFileHeader(t *testing.T, filename string, size int64, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["photo"], 1)
	fileHeader := form.File["photo"][0]
	if size > 0 {
		fileHeader.Size = size
	}
	return fileHeader
}

func pngContent() []byte {
	return append(PNGSignature(), []byte("rest of the image")...)
}

func TestValidateImageFile_Success(t *testing.T) {
	fileHeader := createTestFileHeader(t, "avatar.png", 0, pngContent())

	assert.NoError(t, ValidateImageFile(fileHeader))
}

func TestValidateImageFile_CaseInsensitiveExtension(t *testing.T) {
	fileHeader := createTestFileHeader(t, "avatar.PNG", 0, pngContent())

	assert.NoError(t, ValidateImageFile(fileHeader))
}

func TestValidateImageFile_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		content  []byte
		code     string
	}{
		{"too large", "large.png", 11 * 1024 * 1024, pngContent(), "FILE_TOO_LARGE"},
		{"jpg extension", "photo.jpg", 0, pngContent(), "INVALID_FILE_FORMAT"},
		{"gif extension", "photo.gif", 0, pngContent(), "INVALID_FILE_FORMAT"},
		{"no extension", "photo", 0, pngContent(), "INVALID_FILE_FORMAT"},
		{"png name with jpeg bytes", "photo.png", 0, []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0, 0}, "INVALID_FILE_CONTENT"},
		{"shorter than signature", "tiny.png", 0, []byte("png"), "INVALID_FILE_CONTENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileHeader := createTestFileHeader(t, tt.filename, tt.size, tt.content)

			err := ValidateImageFile(fileHeader)
			require.Error(t, err)

			var fileErr *FileUploadError
			require.ErrorAs(t, err, &fileErr)
			assert.Equal(t, tt.code, fileErr.Code)
		})
	}
}

func TestValidateImageFile_Nil(t *testing.T) {
	err := ValidateImageFile(nil)

	var fileErr *FileUploadError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "NO_FILE", fileErr.Code)
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{Code: "TEST_CODE", Message: "Test error message"}

	assert.Equal(t, "Test error message", err.Error())
}
