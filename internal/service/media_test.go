package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/service"
)

// Minimal JPEG header so content sniffing sees an image.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

const testSizeCap = 1024 * 1024

func newTestResolver(t *testing.T) *service.MediaResolver {
	t.Helper()
	return service.NewMediaResolver(t.TempDir(), testSizeCap)
}

func TestResolveURLDownloadsToTempFile(t *testing.T) {
	payload := append(append([]byte{}, jpegHeader...), bytes.Repeat([]byte{0x01}, 256)...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("download must send a User-Agent")
		}
		w.Write(payload)
	}))
	defer srv.Close()

	resolver := newTestResolver(t)
	asset, err := resolver.ResolveURL(context.Background(), srv.URL + "/photo.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if asset.Category != model.MediaImage {
		t.Errorf("expected image category, got %v", asset.Category)
	}
	if asset.Size != int64(len(payload)) {
		t.Errorf("expected size %d, got %d", len(payload), asset.Size)
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		t.Fatalf("staged file should exist: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("staged bytes must match the download exactly")
	}
}

func TestResolveURLFailureIsHardError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resolver := newTestResolver(t)
	if _, err := resolver.ResolveURL(context.Background(), srv.URL + "/gone.jpg"); err == nil {
		t.Fatal("a failed download must reject the campaign, not degrade silently")
	}
}

func TestResolveURLEnforcesSizeCap(t *testing.T) {
	big := bytes.Repeat([]byte{0x02}, testSizeCap+1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big)
	}))
	defer srv.Close()

	dir := t.TempDir()
	resolver := service.NewMediaResolver(dir, testSizeCap)

	_, err := resolver.ResolveURL(context.Background(), srv.URL + "/huge.bin")
	if !errors.Is(err, service.ErrMediaTooLarge) {
		t.Fatalf("expected ErrMediaTooLarge, got %v", err)
	}

	// The rejected file must not linger in the temp area.
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("rejected media must be removed, found %d leftover files", len(entries))
	}
}

func TestResolveURLRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	resolver := newTestResolver(t)
	if _, err := resolver.ResolveURL(context.Background(), srv.URL + "/empty.bin"); !errors.Is(err, service.ErrMediaEmpty) {
		t.Fatalf("expected ErrMediaEmpty, got %v", err)
	}
}

func TestResolveURLHonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegHeader)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := newTestResolver(t)
	if _, err := resolver.ResolveURL(ctx, srv.URL+"/photo.jpg"); err == nil {
		t.Fatal("a cancelled request must abort the download")
	}
}

func TestMediaCategoryMapping(t *testing.T) {
	cases := []struct {
		name     string
		content  []byte
		document bool
		category model.MediaCategory
	}{
		{"photo.jpg", jpegHeader, false, model.MediaImage},
		{"clip.mp4", bytes.Repeat([]byte{0x00}, 32), true, model.MediaVideo},
		{"report.pdf", []byte("%PDF-1.7 something"), true, model.MediaOther},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(tc.content)
		}))

		resolver := newTestResolver(t)
		asset, err := resolver.ResolveURL(context.Background(), srv.URL + "/" + tc.name)
		srv.Close()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}

		if asset.Category != tc.category {
			t.Errorf("%s: expected category %v, got %v", tc.name, tc.category, asset.Category)
		}
		if asset.Category.AsDocument() != tc.document {
			t.Errorf("%s: expected AsDocument=%v", tc.name, tc.document)
		}
	}
}

func TestStageFileUsesUniqueNames(t *testing.T) {
	dir := t.TempDir()
	resolver := service.NewMediaResolver(dir, testSizeCap)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegHeader)
	}))
	defer srv.Close()

	first, err := resolver.ResolveURL(context.Background(), srv.URL + "/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	second, err := resolver.ResolveURL(context.Background(), srv.URL + "/a.jpg")
	if err != nil {
		t.Fatal(err)
	}

	if first.Path == second.Path {
		t.Error("staged files must get fresh unique names")
	}
	if filepath.Ext(first.Path) != ".jpg" {
		t.Errorf("staged name should keep the source extension, got %q", first.Path)
	}
}
