package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/document/service"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/internal/store"
)

// BlobStore holds raw uploaded file content, keyed by content hash. The
// MinIO wrapper implements it; nil disables blob persistence on upload.
type BlobStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// RegisterDocumentRoutes wires the document resources: CRUD, per-user
// listing, prefix search and the upload pipeline.
func RegisterDocumentRoutes(r *gin.Engine, svc *service.Service, blobs BlobStore) {
	r.GET("/api/documents", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.POST("/api/documents", func(c *gin.Context) {
		var req struct {
			OwnerID     string `json:"userId"`
			Title       string `json:"title"`
			ContentHash string `json:"hashValue"`
			FileExt     string `json:"fileExt"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.OwnerID == "" || req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId and title are required"})
			return
		}
		taken, err := svc.TitleTaken(c.Request.Context(), req.OwnerID, req.Title)
		if err != nil {
			respondError(c, err)
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "a document with this title already exists"})
			return
		}
		d, err := svc.CreateAndIndex(c.Request.Context(), req.OwnerID, req.Title, req.ContentHash, req.FileExt)
		if err != nil && !errors.Is(err, service.ErrIndexDesync) {
			respondError(c, err)
			return
		}
		if errors.Is(err, service.ErrIndexDesync) {
			c.JSON(http.StatusCreated, gin.H{"document": d, "warning": "document stored; search index will catch up on next restart"})
			return
		}
		c.JSON(http.StatusCreated, d)
	})

	r.GET("/api/documents/:id", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	rename := func(c *gin.Context) {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		taken, err := svc.TitleTaken(c.Request.Context(), d.OwnerID, req.Title)
		if err != nil {
			respondError(c, err)
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "a document with this title already exists"})
			return
		}
		err = svc.UpdateTitleAndReindex(c.Request.Context(), d.ID, d.OwnerID, d.Title, req.Title)
		if err != nil && !errors.Is(err, service.ErrIndexDesync) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": d.ID, "title": req.Title})
	}
	r.PATCH("/api/documents/:id", rename)
	r.PUT("/api/documents/:id", rename)

	r.DELETE("/api/documents/:id", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				// already gone
				c.Status(http.StatusNoContent)
				return
			}
			respondError(c, err)
			return
		}
		err = svc.DeleteAndDeindex(c.Request.Context(), d.ID, d.OwnerID, d.Title)
		if err != nil && !errors.Is(err, service.ErrIndexDesync) {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/api/users/:id/documents", func(c *gin.Context) {
		list, err := svc.ListByOwner(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// search never touches the store and never reveals whether the user
	// exists: unknown users get an empty result
	r.GET("/api/search", func(c *gin.Context) {
		ownerID := c.Query("user_id")
		if ownerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		docs := svc.Search(ownerID, c.Query("title"))
		if docs == nil {
			docs = []*document.Document{}
		}
		c.JSON(http.StatusOK, docs)
	})

	r.POST("/api/upload", func(c *gin.Context) {
		uploadDocument(c, svc, blobs)
	})
}

func uploadDocument(c *gin.Context, svc *service.Service, blobs BlobStore) {
	ownerID := c.Query("userId")
	title := c.Query("title")
	if ownerID == "" || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and title are required"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file part in the request"})
		return
	}
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no selected file"})
		return
	}
	ext := filepath.Ext(fh.Filename)

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	hash, err := storage.ContentHash(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// content dedup: the same bytes are never stored twice
	if existing, err := svc.FindByHash(c.Request.Context(), hash); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a document with the same content already exists", "documentId": existing.ID})
		return
	} else if !errors.Is(err, service.ErrNotFound) {
		respondError(c, err)
		return
	}

	taken, err := svc.TitleTaken(c.Request.Context(), ownerID, title)
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "a document with this title already exists"})
		return
	}

	if blobs != nil {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		key := hash + ext
		if err := blobs.UploadFile(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage unavailable"})
			return
		}
	}

	d, err := svc.CreateAndIndex(c.Request.Context(), ownerID, title, hash, ext)
	if err != nil && !errors.Is(err, service.ErrIndexDesync) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store unavailable"})
	case errors.Is(err, store.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
