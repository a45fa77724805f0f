package domain

import "errors"

var (
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage = errors.New("only image files are allowed")
	ErrImageMissing     = errors.New("no file uploaded")
)

// StoredImage is the public reference to an uploaded image.
type StoredImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
