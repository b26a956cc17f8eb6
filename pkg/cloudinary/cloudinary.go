package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client uploads public media: product covers, software logos, category icons,
// resumes and deposit proofs.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (url, thumbnailURL string, err error)
	UploadDocument(ctx context.Context, file io.Reader, folder, filename string) (url string, err error)
}

// Optimized image params for fast frontend loading
const (
	ImageWidth = 800
	ThumbWidth = 200
)

// BuildOptimizedImageURL returns a Cloudinary URL with transformations for optimized delivery.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_limit/%s",
		cloudName, width, publicID)
}

const imageEager = "q_auto,f_auto,w_200,c_fill"

var eagerAsyncFalse = false

type clientImpl struct {
	cloudName string
	root      string
	uploader  *uploader.API
}

func (c *clientImpl) folder(sub string) string {
	if c.root == "" {
		return sub
	}
	return c.root + "/" + sub
}

// UploadImage uploads an image and returns its URL plus an eager thumbnail.
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder string) (url, thumbnailURL string, err error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     c.folder(folder),
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", "", err
	}
	if result.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	url = BuildOptimizedImageURL(c.cloudName, result.PublicID, ImageWidth)
	if len(result.Eager) > 0 {
		thumbnailURL = result.Eager[0].SecureURL
	}
	if thumbnailURL == "" {
		thumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	}
	return url, thumbnailURL, nil
}

// UploadDocument stores a non-image file (PDF resume, screenshot bundle) as a raw asset.
func (c *clientImpl) UploadDocument(ctx context.Context, file io.Reader, folder, filename string) (string, error) {
	useName := true
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:           c.folder(folder),
		ResourceType:     "raw",
		FilenameOverride: filename,
		UseFilename:      &useName,
	})
	if err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
// Uploads land under root/<folder>.
func NewClientFromParams(cloudName, apiKey, apiSecret, root string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		root:      root,
		uploader:  up,
	}, nil
}
