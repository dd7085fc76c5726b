package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"github.com/google/uuid"
)

var (
	ErrMediaTooLarge = errors.New("media file exceeds the size limit")
	ErrMediaEmpty    = errors.New("media file is empty")
)

// Extensions WhatsApp will not play inline; kept as the classification
// fallback when content sniffing is inconclusive.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// MediaResolver stages campaign media into the temp area, either from an
// uploaded file or from a remote URL, and classifies it for sending.
type MediaResolver struct {
	tempDir  string
	maxBytes int64
	client   *http.Client
}

func NewMediaResolver(tempDir string, maxBytes int64) *MediaResolver {
	return &MediaResolver{
		tempDir:  tempDir,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// StageFile copies any uploaded multipart file into the temp area under a
// fresh unique name and returns the staged path.
func (r *MediaResolver) StageFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return r.stage(src, filepath.Ext(fh.Filename))
}

// ResolveUpload prepares an uploaded media file for sending.
func (r *MediaResolver) ResolveUpload(fh *multipart.FileHeader) (*model.MediaAsset, error) {
	staged, err := r.StageFile(fh)
	if err != nil {
		return nil, err
	}
	return r.finish(staged, fh.Filename)
}

// ResolveURL downloads remote media into the temp area. A failed transfer is
// a campaign rejection, never a silent fallback to text-only sends.
func (r *MediaResolver) ResolveURL(ctx context.Context, mediaURL string) (*model.MediaAsset, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid media URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid media URL: %w", err)
	}
	// Some hosts refuse requests without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "*/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download media: server returned %s", resp.Status)
	}

	staged, err := r.stage(resp.Body, path.Ext(parsed.Path))
	if err != nil {
		return nil, err
	}
	return r.finish(staged, path.Base(parsed.Path))
}

func (r *MediaResolver) stage(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(r.tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	if ext == "" {
		ext = ".bin"
	}
	staged := filepath.Join(r.tempDir, uuid.NewString()+ext)

	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(staged)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	return staged, nil
}

// finish validates the staged file on disk and classifies it. A rejected
// file is removed right away so staging failures leave nothing behind.
func (r *MediaResolver) finish(staged, originalName string) (*model.MediaAsset, error) {
	info, err := os.Stat(staged)
	if err != nil {
		os.Remove(staged)
		return nil, fmt.Errorf("failed to stat staged media: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(staged)
		return nil, ErrMediaEmpty
	}
	if info.Size() > r.maxBytes {
		os.Remove(staged)
		return nil, fmt.Errorf("%w: %d bytes over the %d MB cap",
			ErrMediaTooLarge, info.Size(), r.maxBytes/(1024*1024))
	}

	mimeType, err := sniffContentType(staged)
	if err != nil {
		os.Remove(staged)
		return nil, err
	}

	name := filepath.Base(originalName)
	if name == "" || name == "." || name == "/" {
		name = filepath.Base(staged)
	}

	return &model.MediaAsset{
		Path:     staged,
		FileName: name,
		MimeType: mimeType,
		Size:     info.Size(),
		Category: classifyMedia(mimeType, filepath.Ext(staged)),
	}, nil
}

// sniffContentType reads the first 512 bytes, the same window the magic-byte
// check in browsers uses.
func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open staged media: %w", err)
	}
	defer f.Close()

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read staged media: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}

func classifyMedia(mimeType, ext string) model.MediaCategory {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaImage
	case strings.HasPrefix(mimeType, "audio/"):
		return model.MediaAudio
	case strings.HasPrefix(mimeType, "video/"), videoExtensions[strings.ToLower(ext)]:
		return model.MediaVideo
	}
	return model.MediaOther
}
