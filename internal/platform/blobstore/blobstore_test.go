package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func uploadPhoto(t *testing.T, store BlobStore, ownerKind, ownerID, fileName string, content []byte) *BlobMetadata {
	t.Helper()
	meta, err := store.Upload(context.Background(), BlobMetadata{
		FileName:    fileName,
		ContentType: "image/png",
		OwnerKind:   ownerKind,
		OwnerID:     ownerID,
	}, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return meta
}

func TestInMemoryBlobStore_UploadAndDownload(t *testing.T) {
	store := NewInMemoryBlobStore()
	content := []byte("fake-png-bytes")

	meta := uploadPhoto(t, store, "clinic", "clinic-1", "front.png", content)
	if meta.ID == "" {
		t.Error("expected generated id")
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), meta.Size)
	}
	if meta.Hash == "" {
		t.Error("expected content hash")
	}

	rc, got, err := store.Download(context.Background(), meta.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, content) {
		t.Error("downloaded content does not match upload")
	}
	if got.FileName != "front.png" {
		t.Errorf("expected file name 'front.png', got %q", got.FileName)
	}
}

func TestInMemoryBlobStore_UploadValidation(t *testing.T) {
	store := NewInMemoryBlobStore()
	ctx := context.Background()

	_, err := store.Upload(ctx, BlobMetadata{ContentType: "image/png", OwnerKind: "clinic"}, strings.NewReader("x"))
	if !errors.Is(err, ErrMissingFileName) {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}

	_, err = store.Upload(ctx, BlobMetadata{FileName: "a.png", ContentType: "image/png", OwnerKind: "patient"}, strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidOwnerKind) {
		t.Errorf("expected ErrInvalidOwnerKind, got %v", err)
	}

	_, err = store.Upload(ctx, BlobMetadata{FileName: "a.pdf", ContentType: "application/pdf", OwnerKind: "doctor"}, strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestInMemoryBlobStore_Delete(t *testing.T) {
	store := NewInMemoryBlobStore()
	meta := uploadPhoto(t, store, "doctor", "doc-1", "portrait.png", []byte("img"))

	if err := store.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetMetadata(context.Background(), meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound for double delete, got %v", err)
	}
}

func TestInMemoryBlobStore_ListByOwner(t *testing.T) {
	store := NewInMemoryBlobStore()
	uploadPhoto(t, store, "clinic", "clinic-1", "a.png", []byte("1"))
	uploadPhoto(t, store, "clinic", "clinic-1", "b.png", []byte("2"))
	uploadPhoto(t, store, "clinic", "clinic-2", "c.png", []byte("3"))
	uploadPhoto(t, store, "doctor", "clinic-1", "d.png", []byte("4"))

	items, total, err := store.ListByOwner(context.Background(), "clinic", "clinic-1", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestBlobHandler_Upload(t *testing.T) {
	store := NewInMemoryBlobStore()
	h := NewBlobHandler(store)
	e := echo.New()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="front.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	part.Write([]byte("png-bytes"))
	w.WriteField("owner_kind", "clinic")
	w.WriteField("owner_id", "clinic-1")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.handleUpload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBlobHandler_DownloadNotFound(t *testing.T) {
	h := NewBlobHandler(NewInMemoryBlobStore())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.handleDownload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestBlobHandler_ListRejectsUnknownKind(t *testing.T) {
	h := NewBlobHandler(NewInMemoryBlobStore())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "ownerId")
	c.SetParamValues("patient", "p-1")

	if err := h.handleListByOwner(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
