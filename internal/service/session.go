package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/SebasMa24/Backend-BotWhatsApp/database"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/helper"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// Session owns the single WhatsApp connection of this process and the
// readiness state machine around it. All transitions are driven by the
// client's own event stream; callers only ever read snapshots.
//
// Initializing → AwaitingAuth → Ready, any state → Failed. Failed is
// terminal: a new Session must be constructed to retry. A transient
// disconnect is not a failure; it drops the session back to Initializing
// until the client's own reconnect fires Connected again.
type Session struct {
	client *whatsmeow.Client

	mu        sync.RWMutex
	state     model.SessionState
	authCode  string
	lastError string
}

// NewSession builds a client on the first stored device (a fresh device if
// the store is empty) and registers the event handler. The connection is not
// opened until Connect.
func NewSession() (*Session, error) {
	deviceStore, err := database.Container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load device store: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	client := whatsmeow.NewClient(deviceStore, clientLog)

	s := &Session{
		client: client,
		state:  model.StateInitializing,
	}
	client.AddEventHandler(s.handleEvent)
	return s, nil
}

// Connect opens the connection. A device that already paired reconnects
// directly; otherwise the QR channel is consumed in the background and each
// fresh code moves the session to AwaitingAuth.
func (s *Session) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			s.setFailed("failed to connect: " + err.Error())
			return err
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		s.setFailed("failed to get QR channel: " + err.Error())
		return err
	}

	if err := s.client.Connect(); err != nil {
		s.setFailed("failed to connect: " + err.Error())
		return err
	}

	go s.watchQR(qrChan)
	return nil
}

func (s *Session) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch {
		case evt.Event == "code":
			s.setAwaitingAuth(evt.Code)
			log.Println("Scan this code with WhatsApp to authenticate:")
			log.Println(evt.Code)

		case evt.Event == "success":
			log.Println("✓ Code scanned, pairing successful")

		case evt.Event == "timeout":
			s.setFailed("auth code expired before it was scanned")
			return

		case strings.HasPrefix(evt.Event, "err-"):
			s.setFailed("pairing failed: " + evt.Event)
			return
		}
	}
}

func (s *Session) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Connected:
		s.setReady()
		log.Println("✓ WhatsApp client is ready")

	case *events.PairSuccess:
		log.Println("✓ Paired with device:", e.ID)

	case *events.LoggedOut:
		s.setFailed("logged out from WhatsApp")

	case *events.StreamReplaced:
		s.setFailed("stream replaced by another session")

	case *events.Disconnected:
		// Transient socket drop: the client reconnects on its own and
		// fires Connected again. Only drop readiness until then.
		s.setDisconnected()
		log.Println("⚠ Disconnected from WhatsApp, waiting for reconnect")
	}
}

// GetStatus returns a consistent snapshot. It never blocks on the network
// and is safe from concurrent HTTP handlers while events update the state.
func (s *Session) GetStatus() model.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.StatusSnapshot{
		State:     s.state,
		AuthCode:  s.authCode,
		LastError: s.lastError,
	}
}

func (s *Session) IsReady() bool {
	return s.GetStatus().State == model.StateReady
}

// Disconnect closes the underlying connection. Used on process shutdown.
func (s *Session) Disconnect() {
	s.client.Disconnect()
}

func (s *Session) setAwaitingAuth(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Once Ready the code is cleared for good; once Failed nothing revives
	// this session instance.
	if s.state == model.StateReady || s.state == model.StateFailed {
		return
	}
	s.state = model.StateAwaitingAuth
	s.authCode = code
}

func (s *Session) setReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == model.StateFailed {
		return
	}
	s.state = model.StateReady
	s.authCode = ""
}

func (s *Session) setDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == model.StateFailed {
		return
	}
	s.state = model.StateInitializing
	s.authCode = ""
}

func (s *Session) setFailed(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.StateFailed
	s.authCode = ""
	s.lastError = reason
	log.Println("✗ WhatsApp session failed:", reason)
}

// SendText delivers a plain text message.
func (s *Session) SendText(ctx context.Context, to types.JID, body string) error {
	msg := &waE2E.Message{
		Conversation: proto.String(body),
	}
	_, err := s.client.SendMessage(ctx, to, msg)
	return err
}

// SendMedia uploads the staged asset and attaches it according to its
// category: images and audio inline, videos and everything else as a
// document.
func (s *Session) SendMedia(ctx context.Context, to types.JID, asset *model.MediaAsset) error {
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return fmt.Errorf("failed to read media file: %w", err)
	}

	mediaType := whatsmeow.MediaDocument
	switch asset.Category {
	case model.MediaImage:
		mediaType = whatsmeow.MediaImage
	case model.MediaAudio:
		mediaType = whatsmeow.MediaAudio
	}

	uploaded, err := s.client.Upload(ctx, data, mediaType)
	if err != nil {
		return fmt.Errorf("failed to upload media: %w", err)
	}

	_, err = s.client.SendMessage(ctx, to, buildMediaMessage(asset, uploaded))
	return err
}

func buildMediaMessage(asset *model.MediaAsset, uploaded whatsmeow.UploadResponse) *waE2E.Message {
	switch asset.Category {
	case model.MediaImage:
		img := &waE2E.ImageMessage{
			Mimetype:      proto.String(asset.MimeType),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		}
		if thumb, err := helper.JPEGThumbnail(asset.Path); err == nil {
			img.JPEGThumbnail = thumb
		}
		return &waE2E.Message{ImageMessage: img}

	case model.MediaAudio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			Mimetype:      proto.String(asset.MimeType),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		}}

	default:
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			Title:         proto.String(asset.FileName),
			FileName:      proto.String(asset.FileName),
			Mimetype:      proto.String(asset.MimeType),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		}}
	}
}
