// Package router turns inbound chat messages into remote task submissions.
package router

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/correlate"
	"github.com/soyeahso/mjrelay/internal/domain"
	"github.com/soyeahso/mjrelay/internal/logging"
	"github.com/soyeahso/mjrelay/internal/mjapi"
	"github.com/soyeahso/mjrelay/internal/sensitive"
)

const (
	imaginePrefix = "/imagine "
	upPrefix      = "/up "
	helpCommand   = "/help"
)

var errNoImagePayload = errors.New("image message has no payload fetcher")

// Submitter is the task submission dependency, satisfied by *mjapi.Client.
type Submitter interface {
	Submit(ctx context.Context, req mjapi.Request) mjapi.Result
}

// Router decides, per inbound message, which remote task to submit and
// sends at most one immediate reply. It keeps no state between messages
// beyond the session start time used for replay suppression.
type Router struct {
	session   chat.Session
	tasks     Submitter
	filter    *sensitive.Filter
	startedAt time.Time
	log       *logging.Logger
}

// New creates a command router. startedAt is captured once at session start;
// messages older than it are replays from reconnect and are dropped.
func New(session chat.Session, tasks Submitter, filter *sensitive.Filter, startedAt time.Time, log *logging.Logger) *Router {
	return &Router{
		session:   session,
		tasks:     tasks,
		filter:    filter,
		startedAt: startedAt,
		log:       log.Sub("router"),
	}
}

// Handle processes one inbound message to completion. Every rejection path
// is silent except the sensitive-word warning and submission failures.
func (r *Router) Handle(ctx context.Context, msg domain.Message) {
	if msg.Timestamp.Before(r.startedAt) {
		return
	}
	if msg.Self {
		return
	}

	isImage := msg.Kind == domain.KindImage
	// Images are actionable only in direct chats (describe). Everything
	// else that is not plain text, plus system notices, is dropped.
	if isNonsense(msg) && (!isImage || msg.InGroup()) {
		return
	}

	text := msg.Text
	if text == helpCommand {
		r.reply(ctx, msg, helpText)
		return
	}

	if !isImage && !strings.HasPrefix(text, imaginePrefix) && !strings.HasPrefix(text, upPrefix) {
		return
	}

	// Rich-text links paste as HTML anchors; rewrite them to the bare URL
	// so image-to-image prompts survive.
	text = rewriteAnchor(text)

	if r.filter.Match(text) {
		r.reply(ctx, msg, mention(msg)+"⚠ prompt may contain banned words, please check")
		return
	}

	r.log.Info().
		Str("group", msg.Group).
		Str("sender", msg.Sender).
		Str("text", text).
		Msg("routing command")

	state, err := correlate.Key{Group: msg.Group, User: msg.Sender}.Encode()
	if err != nil {
		r.log.Warn().Err(err).
			Str("group", msg.Group).
			Str("sender", msg.Sender).
			Msg("cannot build correlation key, dropping message")
		return
	}

	req, err := r.classify(ctx, msg, text, state)
	if err != nil {
		r.log.Error().Err(err).Str("sender", msg.Sender).Msg("building task request failed")
		return
	}

	result := r.tasks.Submit(ctx, req)
	switch result.Code {
	case mjapi.CodeAccepted:
		// Success is reported later through the notification relay.
	case mjapi.CodeQueued:
		r.reply(ctx, msg, mention(msg)+"⏰ "+result.Description)
	default:
		r.reply(ctx, msg, mention(msg)+"❌ "+result.Description)
	}
}

// classify maps the message onto exactly one task variant.
func (r *Router) classify(ctx context.Context, msg domain.Message, text, state string) (mjapi.Request, error) {
	switch {
	case !msg.InGroup() && msg.Kind == domain.KindImage:
		if msg.Image == nil {
			return nil, errNoImagePayload
		}
		data, err := msg.Image(ctx)
		if err != nil {
			return nil, err
		}
		return mjapi.DescribeRequest{
			State:  state,
			Base64: base64.StdEncoding.EncodeToString(data),
		}, nil
	case strings.HasPrefix(text, imaginePrefix):
		return mjapi.ImagineRequest{State: state, Prompt: text[len(imaginePrefix):]}, nil
	default:
		// A malformed /up with no operation token is still forwarded; the
		// proxy validates task ID and operation syntax.
		return mjapi.ChangeRequest{State: state, Content: text[len(upPrefix):]}, nil
	}
}

// reply sends one message back to where the command came from.
func (r *Router) reply(ctx context.Context, msg domain.Message, text string) {
	dest := replyDestination(msg)
	if err := r.session.SendText(ctx, dest, text); err != nil {
		r.log.Error().Err(err).
			Str("dest", dest.Name).
			Msg("sending reply failed")
		return
	}
	r.log.Info().
		Str("group", msg.Group).
		Str("sender", r.session.SelfName()).
		Str("text", text).
		Msg("reply sent")
}

func replyDestination(msg domain.Message) domain.Destination {
	if msg.InGroup() {
		return domain.Destination{Kind: domain.DestGroup, Name: msg.Group, User: msg.Sender}
	}
	return domain.Destination{Kind: domain.DestContact, Name: msg.Sender, User: msg.Sender}
}

// mention returns the "@sender" title line for group replies, empty for
// direct messages.
func mention(msg domain.Message) string {
	if msg.InGroup() {
		return "@" + msg.Sender + " \n"
	}
	return ""
}
