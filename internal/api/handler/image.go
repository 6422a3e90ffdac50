package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/verid-labs/verid/internal/domain"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// extractImage extracts and validates an uploaded image by form field name
func extractImage(c *fiber.Ctx, field string) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	return readImageFile(file)
}

// extractImages extracts every file uploaded under a repeated form field,
// preserving upload order.
func extractImages(c *fiber.Ctx, field string) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	files := form.File[field]
	if len(files) == 0 {
		return nil, domain.ErrValidationFailed.WithError(fiber.NewError(fiber.StatusBadRequest, field+" is required"))
	}

	images := make([][]byte, 0, len(files))
	for _, file := range files {
		imageBytes, err := readImageFile(file)
		if err != nil {
			return nil, err
		}
		images = append(images, imageBytes)
	}

	return images, nil
}

func readImageFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxImageSize || file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
