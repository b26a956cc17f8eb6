package handler

import (
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"digilinex/internal/middleware"
	"digilinex/internal/service"
	"digilinex/pkg/cloudinary"
	"digilinex/pkg/objectstore"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	maxImageSize    = 10 << 20
	maxDocumentSize = 20 << 20
	maxDataFileSize = 500 << 20
)

// Public media goes to Cloudinary. Paid files go to the private object store.
var (
	memberImageFolders = map[string]string{
		"avatar":        "avatars",
		"deposit-proof": "deposits",
	}
	adminImageFolders = map[string]string{
		"product":  "products",
		"software": "software",
		"category": "categories",
	}
)

type UploadHandler struct {
	cloud   cloudinary.Client
	files   service.FileStore
	catalog CatalogServicer
	log     logrus.FieldLogger
}

// NewUploadHandler accepts nil cloud or files; the matching endpoints then answer 503.
func NewUploadHandler(cloud cloudinary.Client, files service.FileStore, catalog CatalogServicer, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{cloud: cloud, files: files, catalog: catalog, log: log.WithField("component", "upload_handler")}
}

func (h *UploadHandler) formFile(c *gin.Context, max int64) (*multipart.FileHeader, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return nil, false
	}
	if file.Size > max {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return nil, false
	}
	return file, true
}

func (h *UploadHandler) cloudReady(c *gin.Context) bool {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads not configured"})
		return false
	}
	return true
}

// UploadImage handles POST /me/upload/image?kind=avatar|deposit-proof.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	folder, ok := memberImageFolders[c.Query("kind")]
	if !ok {
		badRequest(c, "kind must be avatar or deposit-proof")
		return
	}
	h.image(c, folder+"/"+strconv.FormatUint(uint64(middleware.GetUserID(c)), 10))
}

// AdminUploadImage handles POST /admin/upload/image?kind=product|software|category.
func (h *UploadHandler) AdminUploadImage(c *gin.Context) {
	folder, ok := adminImageFolders[c.Query("kind")]
	if !ok {
		badRequest(c, "kind must be product, software or category")
		return
	}
	h.image(c, folder)
}

func (h *UploadHandler) image(c *gin.Context, folder string) {
	if !h.cloudReady(c) {
		return
	}
	file, ok := h.formFile(c, maxImageSize)
	if !ok {
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()

	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), f, folder)
	if err != nil {
		h.log.WithError(err).WithField("folder", folder).Error("image upload")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "thumbnail_url": thumb})
}

// UploadResume handles POST /me/upload/resume.
func (h *UploadHandler) UploadResume(c *gin.Context) {
	if !h.cloudReady(c) {
		return
	}
	file, ok := h.formFile(c, maxDocumentSize)
	if !ok {
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()

	folder := "resumes/" + strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	url, err := h.cloud.UploadDocument(c.Request.Context(), f, folder, path.Base(file.Filename))
	if err != nil {
		h.log.WithError(err).Error("resume upload")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// AdminUploadFile handles POST /admin/upload/file?prefix=products and returns the object key.
func (h *UploadHandler) AdminUploadFile(c *gin.Context) {
	prefix := c.DefaultQuery("prefix", "products")
	if prefix != "products" && prefix != "orders" {
		badRequest(c, "prefix must be products or orders")
		return
	}
	key, ok := h.store(c, prefix)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

// UploadPackageFile handles POST /admin/packages/:id/file and attaches the
// stored file to the package as its data file.
func (h *UploadHandler) UploadPackageFile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	key, ok := h.store(c, "packages/"+strconv.FormatUint(uint64(id), 10))
	if !ok {
		return
	}
	if err := h.catalog.SetPackageFile(c.Request.Context(), id, key); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

func (h *UploadHandler) store(c *gin.Context, prefix string) (string, bool) {
	if h.files == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage not configured"})
		return "", false
	}
	file, ok := h.formFile(c, maxDataFileSize)
	if !ok {
		return "", false
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return "", false
	}
	defer f.Close()

	key := objectstore.NewKey(prefix, file.Filename)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.files.Put(c.Request.Context(), key, contentType, f); err != nil {
		h.log.WithError(err).WithField("key", key).Error("object upload")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return "", false
	}
	return key, true
}
