package handler

import (
	"fmt"
	"mime/multipart"

	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/gin-gonic/gin"
)

// openUpload extracts the uploaded file from the multipart form, enforces the
// size limit, and resolves the parse format from the file extension. allowed
// restricts which formats this upload path accepts.
func openUpload(c *gin.Context, maxBytes int64, allowed ...ingest.Format) (multipart.File, ingest.Format, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("no file uploaded")
	}

	if fileHeader.Size > maxBytes {
		return nil, "", fmt.Errorf("file exceeds the maximum size of %d bytes", maxBytes)
	}

	format, ok := ingest.FormatFromExtension(fileHeader.Filename)
	if !ok {
		return nil, "", fmt.Errorf("unsupported file type")
	}

	permitted := false
	for _, f := range allowed {
		if f == format {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, "", fmt.Errorf("unsupported file type for this upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open uploaded file")
	}

	return file, format, nil
}
