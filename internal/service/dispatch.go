package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/helper"
	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"go.mau.fi/whatsmeow/types"
)

var (
	ErrSessionNotReady = errors.New("whatsapp session is not ready")
	ErrNoRecipientRows = errors.New("campaign has no recipient rows")
)

// Transport is the slice of the session the pipeline drives.
type Transport interface {
	IsReady() bool
	SendText(ctx context.Context, to types.JID, body string) error
	SendMedia(ctx context.Context, to types.JID, asset *model.MediaAsset) error
}

// DelayPolicy throttles the pipeline. BetweenMessages runs after every
// recipient, BeforeMedia between a recipient's text and media sends.
type DelayPolicy struct {
	BetweenMessages time.Duration
	BeforeMedia     time.Duration
}

func (p DelayPolicy) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Dispatcher runs campaigns against the single shared session, one at a
// time. Serializing here is what preserves message ordering on the transport
// side; concurrent submissions simply queue.
type Dispatcher struct {
	mu        sync.Mutex
	transport Transport
	delays    DelayPolicy
}

func NewDispatcher(transport Transport, delays DelayPolicy) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		delays:    delays,
	}
}

// Run processes every recipient row in input order and returns one result
// per row. A single recipient's failure never aborts the campaign. All temp
// files the campaign owns are released on every exit path.
func (d *Dispatcher) Run(ctx context.Context, camp *model.Campaign) ([]model.SendResult, error) {
	defer camp.Release()

	if !d.transport.IsReady() {
		return nil, ErrSessionNotReady
	}
	if len(camp.Rows) == 0 {
		return nil, ErrNoRecipientRows
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// The session may have dropped while this campaign waited its turn.
	if !d.transport.IsReady() {
		return nil, ErrSessionNotReady
	}

	log.Printf("🔄 Campaign started: %d recipients, media=%v", len(camp.Rows), camp.Media != nil)

	results := make([]model.SendResult, 0, len(camp.Rows))
	for i, row := range camp.Rows {
		results = append(results, d.sendRow(ctx, camp, row))

		if err := d.delays.wait(ctx, d.delays.BetweenMessages); err != nil {
			log.Printf("⚠ Campaign interrupted after %d of %d recipients: %v", i+1, len(camp.Rows), err)
			return results, nil
		}
	}

	log.Printf("✓ Campaign finished: %d results", len(results))
	return results, nil
}

func (d *Dispatcher) sendRow(ctx context.Context, camp *model.Campaign, row model.RecipientRow) model.SendResult {
	phone, ok := helper.PhoneFromRow(row)
	if !ok {
		return failedResult("", "row has no phone column")
	}

	jid, err := helper.FormatRecipient(phone)
	if err != nil {
		return failedResult(phone, err.Error())
	}
	to := jid.String()

	body := helper.RenderTemplate(camp.Template, row)

	if err := d.transport.SendText(ctx, jid, body); err != nil {
		log.Printf("✗ Failed to send to %s: %v", to, err)
		return failedResult(to, err.Error())
	}

	if camp.Media != nil {
		if err := d.delays.wait(ctx, d.delays.BeforeMedia); err != nil {
			return failedResult(to, "interrupted before media send")
		}
		if err := d.transport.SendMedia(ctx, jid, camp.Media); err != nil {
			// Text already went out; the media failure still marks the row.
			log.Printf("✗ Failed to send media to %s: %v", to, err)
			return failedResult(to, fmt.Sprintf("media: %v", err))
		}
	}

	log.Printf("✓ Sent to %s", to)
	return model.SendResult{To: to, Status: model.StatusSent}
}

func failedResult(to, reason string) model.SendResult {
	return model.SendResult{To: to, Status: "failed: " + reason}
}
