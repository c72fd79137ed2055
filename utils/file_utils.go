package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (5MB)
	maxFileSize = 5 * 1024 * 1024
	// Profile pictures are resized down to this bound
	maxPictureDimension = 512
)

// Allowed image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// ValidateImageFile checks extension and size limits for an upload.
func ValidateImageFile(filename string, size int64) error {
	if size > maxFileSize {
		return fmt.Errorf("file too large: maximum size is %d bytes", maxFileSize)
	}
	ext := strings.ToLower(filepath.Ext(cleanFilename(filename)))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	if err := os.MkdirAll(uploadBaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}

	profileDir := filepath.Join(uploadBaseDir, "profiles")
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", profileDir, err)
	}

	return nil
}

// SaveProfilePicture decodes, resizes and stores a profile picture and
// returns the URL it is served from. Everything is re-encoded as JPEG,
// which also strips whatever was embedded in the original file.
func SaveProfilePicture(fileData []byte, originalName string) (string, error) {
	if err := ValidateImageFile(originalName, int64(len(fileData))); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(fileData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPictureDimension || bounds.Dy() > maxPictureDimension {
		img = imaging.Fit(img, maxPictureDimension, maxPictureDimension, imaging.Lanczos)
	}

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	fullPath := filepath.Join(uploadBaseDir, "profiles", filename)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %v", err)
	}

	return fmt.Sprintf("%s/profiles/%s", baseURL, filename), nil
}

// DeleteUploadedFile removes a previously stored file given its URL.
func DeleteUploadedFile(fileURL string) error {
	if !strings.HasPrefix(fileURL, baseURL+"/") {
		return fmt.Errorf("not an uploaded file: %s", fileURL)
	}
	rel := strings.TrimPrefix(fileURL, baseURL+"/")
	return os.Remove(filepath.Join(uploadBaseDir, filepath.FromSlash(rel)))
}
