package host

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
)

func sampleSlot() domain.Slot {
	return domain.Slot{
		ID:    3,
		Type:  domain.Workout,
		City:  domain.NYC,
		Time:  domain.Evening,
		Title: "Sunset Stretch & Walk",
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		want     Platform
		wantErr  bool
	}{
		{"empty defaults to none", "", PlatformNone, false},
		{"none", PlatformNone, PlatformNone, false},
		{"telegram", PlatformTelegram, PlatformTelegram, false},
		{"unknown", Platform("discord"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(Options{Platform: tt.platform})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPlatform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Platform())
			assert.Equal(t, tt.want, b.Theme().Platform)
		})
	}
}

func TestShareText(t *testing.T) {
	assert.Equal(t, "Sunset Stretch & Walk — Workout @ New York City • Evening", ShareText(sampleSlot()))
}

func TestTheme(t *testing.T) {
	none, _ := New(Options{})
	assert.Equal(t, Theme{Platform: PlatformNone, BackgroundColor: "#0D0F13", TextColor: "#FFFFFF"}, none.Theme())

	tg, _ := New(Options{Platform: PlatformTelegram, TextColor: "#EEEEEE"})
	theme := tg.Theme()
	assert.Equal(t, "#0D0F13", theme.HeaderColor)
	assert.Equal(t, "#0D0F13", theme.BackgroundColor)
	assert.Equal(t, "#EEEEEE", theme.TextColor)

	tgDefault, _ := New(Options{Platform: PlatformTelegram})
	assert.Equal(t, DefaultTextColor, tgDefault.Theme().TextColor)
}

func TestDefaultBridge_Share(t *testing.T) {
	b, err := New(Options{BaseURL: "https://tention.app/"})
	require.NoError(t, err)

	p, err := b.Share(context.Background(), sampleSlot())
	require.NoError(t, err)

	assert.Equal(t, PlatformNone, p.Platform)
	assert.Equal(t, ShareTitle, p.Title)
	assert.Len(t, p.Code, codeLength)
	assert.Equal(t, "https://tention.app/s/"+p.Code+"/sunset-stretch-and-walk", p.Link)
	assert.Empty(t, p.ShareURL)
}

func TestDefaultBridge_ShareWithoutBaseURL(t *testing.T) {
	b, _ := New(Options{})
	p, err := b.Share(context.Background(), sampleSlot())
	require.NoError(t, err)
	assert.Empty(t, p.Link)
	assert.NotEmpty(t, p.Text)
}

func TestDefault(t *testing.T) {
	b := Default()
	assert.Equal(t, PlatformNone, b.Platform())
	assert.Equal(t, DefaultBackground, b.Theme().BackgroundColor)

	p, err := b.Share(context.Background(), sampleSlot())
	require.NoError(t, err)
	assert.Equal(t, ShareTitle, p.Title)
	assert.Empty(t, p.Link)
}

func TestTelegramBridge_Share(t *testing.T) {
	b, _ := New(Options{Platform: PlatformTelegram, BaseURL: "https://tention.app"})

	p, err := b.Share(context.Background(), sampleSlot())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p.ShareURL, "https://t.me/share/url?url="))

	u, err := url.Parse(p.ShareURL)
	require.NoError(t, err)
	assert.Equal(t, p.Link, u.Query().Get("url"))
	assert.Equal(t, ShareText(sampleSlot()), u.Query().Get("text"))
}

func TestShare_CodesDiffer(t *testing.T) {
	b, _ := New(Options{})
	a, _ := b.Share(context.Background(), sampleSlot())
	c, _ := b.Share(context.Background(), sampleSlot())
	assert.NotEqual(t, a.Code, c.Code)
}
