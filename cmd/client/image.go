package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/profilepanel/internal/client/profile"
	"github.com/atinyakov/profilepanel/internal/models"
)

var errNotImage = errors.New("file is not an image")

// loadImage reads the file at path for the panel. Files above the panel's
// size limit are returned with their size only so the panel can reject them
// without the content being read.
func loadImage(path string) (*models.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	if info.Size() > profile.MaxImageSize {
		return &models.ImageFile{Name: name, Size: info.Size()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s: %w (%s)", name, errNotImage, contentType)
	}
	return models.NewImageFile(name, contentType, data), nil
}
