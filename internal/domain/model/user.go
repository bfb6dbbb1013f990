package model

import "time"

// SavedVideoRef marks a bookmarked post inside a user's saved list.
type SavedVideoRef struct {
	ID string `json:"$id"`
}

// User is the profile record linked to an auth account.
type User struct {
	ID          string
	AccountID   string
	Email       string
	Username    string
	Avatar      string
	SavedVideos []SavedVideoRef
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSaved reports whether videoID is in the saved list.
func (u *User) HasSaved(videoID string) bool {
	for _, ref := range u.SavedVideos {
		if ref.ID == videoID {
			return true
		}
	}
	return false
}

// ToggleSaved returns the saved list with videoID removed if present, or appended if absent.
// The receiver is not modified. saved is true when the video ends up in the list.
func (u *User) ToggleSaved(videoID string) (next []SavedVideoRef, saved bool) {
	if u.HasSaved(videoID) {
		next = make([]SavedVideoRef, 0, len(u.SavedVideos))
		for _, ref := range u.SavedVideos {
			if ref.ID != videoID {
				next = append(next, ref)
			}
		}
		return next, false
	}

	next = make([]SavedVideoRef, 0, len(u.SavedVideos)+1)
	next = append(next, u.SavedVideos...)
	next = append(next, SavedVideoRef{ID: videoID})
	return next, true
}

// SavedRefsData converts refs to the attribute form stored in documents.
func SavedRefsData(refs []SavedVideoRef) []any {
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		out = append(out, map[string]any{AttrID: ref.ID})
	}
	return out
}
