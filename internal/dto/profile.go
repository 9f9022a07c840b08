package dto

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen   = 40
	maxBioLen    = 160
	maxAvatarLen = 512
)

// Profile is the viewer's card on the "My" screen
type Profile struct {
	Actor  string `json:"actor"`
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// UpdateProfileRequest replaces the viewer's profile
type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// Validate validates the UpdateProfileRequest
func (r *UpdateProfileRequest) Validate() (bool, string) {
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		return false, "Name is too long"
	}
	if utf8.RuneCountInString(r.Bio) > maxBioLen {
		return false, "Bio is too long"
	}
	if r.Avatar != "" {
		if len(r.Avatar) > maxAvatarLen {
			return false, "Avatar URL is too long"
		}
		u, err := url.Parse(r.Avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return false, "Avatar must be an http(s) URL"
		}
	}
	return true, ""
}

// Normalize trims surrounding whitespace
func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Bio = strings.TrimSpace(r.Bio)
	r.Avatar = strings.TrimSpace(r.Avatar)
}
