// Package notify receives task progress webhooks from the proxy and relays
// them into the originating chat destination.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/correlate"
	"github.com/soyeahso/mjrelay/internal/domain"
	"github.com/soyeahso/mjrelay/internal/logging"
)

// ImageSource fetches a rendered image for delivery, satisfied by *Fetcher.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (domain.Image, error)
}

// Relay resolves a notification's correlation key to a chat destination and
// sends the formatted progress message. It holds no per-task state.
type Relay struct {
	session chat.Session
	images  ImageSource
	log     *logging.Logger
}

// NewRelay creates a notification relay.
func NewRelay(session chat.Session, images ImageSource, log *logging.Logger) *Relay {
	return &Relay{
		session: session,
		images:  images,
		log:     log.Sub("notify"),
	}
}

// Handle relays one notification event. It returns
// chat.ErrDestinationNotFound when the key resolves to nothing (no sends
// are issued in that case) and any other error on send failure of the
// primary text message. Image delivery failures are logged but do not fail
// the relay: the text message already went out.
func (r *Relay) Handle(ctx context.Context, evt Event) error {
	key := correlate.Parse(evt.State)
	dest, err := chat.ResolveDestination(ctx, r.session, key)
	if err != nil {
		return err
	}

	title := ""
	if dest.IsGroup() {
		title = "@" + dest.User + " \n"
	}

	switch evt.Status {
	case StatusSubmitted:
		return r.session.SendText(ctx, dest,
			title+fmt.Sprintf("✅ task submitted\n✨ %s\n🚀 processing, please wait", evt.Description))

	case StatusFailure:
		return r.session.SendText(ctx, dest,
			title+fmt.Sprintf("❌ task failed\n✨ %s\n📒 reason: %s", evt.Description, evt.FailReason))

	case StatusSuccess:
		return r.handleSuccess(ctx, dest, title, evt)
	}

	r.log.Debug().Str("status", evt.Status).Str("state", evt.State).Msg("ignoring notification status")
	return nil
}

func (r *Relay) handleSuccess(ctx context.Context, dest domain.Destination, title string, evt Event) error {
	elapsed := displayDuration(evt.FinishTime - evt.SubmitTime)

	switch evt.Action {
	case ActionUpscale:
		text := title + fmt.Sprintf("🎨 upscale complete, took %s\n✨ %s", elapsed, evt.Description)
		if err := r.session.SendText(ctx, dest, text); err != nil {
			return err
		}
		r.deliverImage(ctx, dest, evt.ImageURL)
		return nil

	case ActionDescribe:
		// Descriptions carry no rendered image, only the extracted prompt.
		text := title + fmt.Sprintf(
			"🎨 image described, took %s\n✨ Prompt: %s\n✨✨ Prompt (EN): %s\n🔗 %s",
			elapsed, evt.Prompt, evt.PromptEn, evt.ImageURL)
		return r.session.SendText(ctx, dest, text)

	default:
		verb := "variation"
		if evt.Action == ActionImagine {
			verb = "drawing"
		}
		text := title + fmt.Sprintf(
			"🎨 %s complete, took %s\n✨ Prompt: %s\n📨 Task ID: %s\n🪄 Upscale U1-U4, vary V1-V4\n✏️ Use [/up taskID op]\n/up %s U1",
			verb, elapsed, evt.Prompt, evt.ID, evt.ID)
		if err := r.session.SendText(ctx, dest, text); err != nil {
			return err
		}
		r.deliverImage(ctx, dest, evt.ImageURL)
		return nil
	}
}

// deliverImage fetches and sends the rendered image. Best effort: failures
// are logged and swallowed.
func (r *Relay) deliverImage(ctx context.Context, dest domain.Destination, url string) {
	if url == "" {
		return
	}
	img, err := r.images.Fetch(ctx, url)
	if err != nil {
		r.log.Error().Err(err).Str("url", url).Msg("fetching result image failed")
		return
	}
	if err := r.session.SendImage(ctx, dest, img); err != nil {
		r.log.Error().Err(err).Str("dest", dest.Name).Msg("sending result image failed")
	}
}

// displayDuration renders a millisecond interval as a human-readable
// duration rounded to whole seconds.
func displayDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	return d.Round(time.Second).String()
}
