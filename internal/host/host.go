// Package host adapts the service to the platform embedding the client (Telegram or none).
package host

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

// Platform identifies the embedding host
type Platform string

const (
	PlatformNone     Platform = "none"
	PlatformTelegram Platform = "telegram"
)

const (
	// ShareTitle is the title attached to every share payload
	ShareTitle = "TENtion"

	DefaultBackground = "#0D0F13"
	DefaultTextColor  = "#FFFFFF"

	telegramShareURL = "https://t.me/share/url"
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	codeLength       = 7
)

var (
	ErrUnknownPlatform = errors.New("unknown host platform")
	ErrShareFailed     = errors.New("failed to build share payload")
)

// Theme holds the colours the client should paint with
type Theme struct {
	Platform        Platform `json:"platform"`
	HeaderColor     string   `json:"header_color,omitempty"`
	BackgroundColor string   `json:"background_color"`
	TextColor       string   `json:"text_color"`
}

// SharePayload is what a client hands to the native share sheet
type SharePayload struct {
	Platform Platform `json:"platform"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Link     string   `json:"link,omitempty"`
	ShareURL string   `json:"share_url,omitempty"`
}

// Bridge is the host capability detected at startup
type Bridge interface {
	Platform() Platform
	Theme() Theme
	Share(ctx context.Context, slot domain.Slot) (SharePayload, error)
}

// Options configures New
type Options struct {
	Platform  Platform
	TextColor string
	BaseURL   string
}

// Default returns the bridge used when no host platform is present
func Default() Bridge {
	return &defaultBridge{}
}

// New returns the bridge for the configured platform
func New(opts Options) (Bridge, error) {
	switch opts.Platform {
	case "", PlatformNone:
		return &defaultBridge{baseURL: strings.TrimRight(opts.BaseURL, "/")}, nil
	case PlatformTelegram:
		text := opts.TextColor
		if text == "" {
			text = DefaultTextColor
		}
		return &telegramBridge{
			defaultBridge: defaultBridge{baseURL: strings.TrimRight(opts.BaseURL, "/")},
			textColor:     text,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, opts.Platform)
	}
}

// ShareText formats the share line for a slot
func ShareText(slot domain.Slot) string {
	return fmt.Sprintf("%s — %s @ %s • %s", slot.Title, slot.Type, domain.CityOf(slot.City).Name, slot.Time)
}

type defaultBridge struct {
	baseURL string
}

func (b *defaultBridge) Platform() Platform { return PlatformNone }

func (b *defaultBridge) Theme() Theme {
	return Theme{
		Platform:        PlatformNone,
		BackgroundColor: DefaultBackground,
		TextColor:       DefaultTextColor,
	}
}

func (b *defaultBridge) Share(ctx context.Context, slot domain.Slot) (SharePayload, error) {
	return b.payload(PlatformNone, slot)
}

func (b *defaultBridge) payload(p Platform, slot domain.Slot) (SharePayload, error) {
	code, err := gonanoid.Generate(codeAlphabet, codeLength)
	if err != nil {
		return SharePayload{}, fmt.Errorf("%w: %v", ErrShareFailed, err)
	}

	out := SharePayload{
		Platform: p,
		Code:     code,
		Title:    ShareTitle,
		Text:     ShareText(slot),
	}
	if b.baseURL != "" {
		out.Link = fmt.Sprintf("%s/s/%s/%s", b.baseURL, code, slug.Make(slot.Title))
	}
	return out, nil
}

type telegramBridge struct {
	defaultBridge
	textColor string
}

func (b *telegramBridge) Platform() Platform { return PlatformTelegram }

func (b *telegramBridge) Theme() Theme {
	return Theme{
		Platform:        PlatformTelegram,
		HeaderColor:     DefaultBackground,
		BackgroundColor: DefaultBackground,
		TextColor:       b.textColor,
	}
}

func (b *telegramBridge) Share(ctx context.Context, slot domain.Slot) (SharePayload, error) {
	out, err := b.payload(PlatformTelegram, slot)
	if err != nil {
		return SharePayload{}, err
	}

	out.ShareURL = fmt.Sprintf("%s?url=%s&text=%s",
		telegramShareURL, url.QueryEscape(out.Link), url.QueryEscape(out.Text))
	return out, nil
}
