package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/fluxload/flux/internal/config"
)

// buildMultipartBody assembles a multipart form body from the part list and
// returns the encoded buffer plus the form's content type. File parts
// reference a filesystem path that must exist at send time.
func buildMultipartBody(parts []config.MultipartPart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, part := range parts {
		switch part.Type {
		case config.MultipartFile:
			if err := writeFilePart(writer, part); err != nil {
				return nil, "", err
			}
		case config.MultipartField:
			if err := writer.WriteField(part.Name, part.Value); err != nil {
				return nil, "", fmt.Errorf("multipart field %q: %w", part.Name, err)
			}
		default:
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownPartType, part.Type)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, part config.MultipartPart) error {
	file, err := os.Open(part.Path)
	if err != nil {
		return fmt.Errorf("multipart file %q: %w", part.Path, err)
	}
	defer file.Close()

	fieldWriter, err := writer.CreateFormFile(part.Name, filepath.Base(part.Path))
	if err != nil {
		return fmt.Errorf("multipart file %q: %w", part.Path, err)
	}
	if _, err := io.Copy(fieldWriter, file); err != nil {
		return fmt.Errorf("multipart file %q: %w", part.Path, err)
	}
	return nil
}
