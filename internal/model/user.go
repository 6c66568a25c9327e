// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// USER TYPES
// =============================================================================

// UserType distinguishes anonymous guests from registered accounts.
type UserType string

const (
	UserTypeGuest      UserType = "guest"
	UserTypeRegistered UserType = "registered"
)

// Gender is the self-reported gender stored in the birth profile.
type Gender string

const (
	GenderMale         Gender = "male"
	GenderFemale       Gender = "female"
	GenderOther        Gender = "other"
	GenderPreferNotSay Gender = "prefer_not_say"
)

// User is an account record owned by the backend.
type User struct {
	UserID    string       `json:"user_id"`
	UserType  UserType     `json:"user_type"`
	Username  string       `json:"username,omitempty"`
	Profile   *UserProfile `json:"profile,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// IsGuest reports whether the user is an anonymous guest account.
func (u *User) IsGuest() bool {
	return u.UserType == UserTypeGuest
}

// DisplayName returns the best available name for the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Profile != nil && u.Profile.Nickname != "" {
		return u.Profile.Nickname
	}
	return "Guest"
}

// =============================================================================
// BIRTH PROFILE
// =============================================================================

// UserProfile holds the optional birth data used for chart computation.
// Every field is individually optional; the backend decides whether the
// profile is complete enough to cast a chart. Pointer fields distinguish
// "unset" from zero values so partial profiles survive merge-on-submit.
type UserProfile struct {
	Nickname    string `json:"nickname,omitempty"`
	Gender      Gender `json:"gender,omitempty"`
	BirthYear   *int   `json:"birth_year,omitempty"`
	BirthMonth  *int   `json:"birth_month,omitempty"`
	BirthDay    *int   `json:"birth_day,omitempty"`
	BirthHour   *int   `json:"birth_hour,omitempty"`
	BirthMinute *int   `json:"birth_minute,omitempty"`
	BirthCity   string `json:"birth_city,omitempty"`
}

// Merge overlays set fields from other onto a copy of p. Unset fields in
// other keep p's values, so editing a form with only some fields filled
// never erases earlier answers.
func (p UserProfile) Merge(other UserProfile) UserProfile {
	merged := p
	if other.Nickname != "" {
		merged.Nickname = other.Nickname
	}
	if other.Gender != "" {
		merged.Gender = other.Gender
	}
	if other.BirthYear != nil {
		merged.BirthYear = other.BirthYear
	}
	if other.BirthMonth != nil {
		merged.BirthMonth = other.BirthMonth
	}
	if other.BirthDay != nil {
		merged.BirthDay = other.BirthDay
	}
	if other.BirthHour != nil {
		merged.BirthHour = other.BirthHour
	}
	if other.BirthMinute != nil {
		merged.BirthMinute = other.BirthMinute
	}
	if other.BirthCity != "" {
		merged.BirthCity = other.BirthCity
	}
	return merged
}

// HasBirthData reports whether the minimum fields for a chart are set.
// Advisory only; the backend is the authority on completeness.
func (p UserProfile) HasBirthData() bool {
	return p.BirthYear != nil && p.BirthMonth != nil && p.BirthDay != nil && p.BirthCity != ""
}

// IntPtr is a convenience for building profiles from form values.
func IntPtr(v int) *int {
	return &v
}
