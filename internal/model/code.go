package model

// Code is a user-owned sync record: a short content string with a display
// name and an optional website/icon. Every read and write of a Code is scoped
// by both ID and OwnerID.
//
// IconURL and WebsiteURL are pointers because null is a meaningful wire value
// for them — a code without a website serializes as "website_url": null.
type Code struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Content     string  `json:"content"`
	DisplayName string  `json:"display_name"`
	IconURL     *string `json:"icon_url"`
	WebsiteURL  *string `json:"website_url"`
}

// CodePatch is a partial update to a Code. Only supplied fields change.
//
// Content and DisplayName cannot be null, so a plain pointer is enough:
// nil means "not mentioned". IconURL and WebsiteURL can be cleared by the
// client, which requires telling "present and null" apart from "absent" —
// that's what Nullable provides.
type CodePatch struct {
	Content     *string          `json:"content"`
	DisplayName *string          `json:"display_name"`
	IconURL     Nullable[string] `json:"icon_url"`
	WebsiteURL  Nullable[string] `json:"website_url"`
}

// IsZero reports whether the patch mentions no field at all.
func (p CodePatch) IsZero() bool {
	return p.Content == nil && p.DisplayName == nil && !p.IconURL.Set && !p.WebsiteURL.Set
}
