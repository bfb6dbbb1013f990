package handler

import (
	"time"

	"github.com/hszk-dev/aora/internal/domain/model"
)

// Request/Response types

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type UserResponse struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"account_id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Avatar      string   `json:"avatar"`
	SavedVideos []string `json:"saved_videos"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type CreateUserResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

type PostResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Video     string `json:"video"`
	Prompt    string `json:"prompt,omitempty"`
	CreatorID string `json:"creator_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	Count int            `json:"count"`
}

type SavedVideosResponse struct {
	SavedVideos []string `json:"saved_videos"`
}

type SaveVideoResponse struct {
	VideoID string `json:"video_id"`
	Saved   bool   `json:"saved"`
}

type FileURLResponse struct {
	URL string `json:"url"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func NewSessionResponse(s *model.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		AccountID: s.AccountID,
		Token:     s.Token,
		ExpiresAt: formatTime(s.ExpiresAt),
	}
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		AccountID:   u.AccountID,
		Email:       u.Email,
		Username:    u.Username,
		Avatar:      u.Avatar,
		SavedVideos: savedIDs(u.SavedVideos),
		CreatedAt:   formatTime(u.CreatedAt),
		UpdatedAt:   formatTime(u.UpdatedAt),
	}
}

func NewPostResponse(p *model.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Thumbnail: p.Thumbnail,
		Video:     p.Video,
		Prompt:    p.Prompt,
		CreatorID: p.CreatorID,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

// NewPostListResponse never renders a null list.
func NewPostListResponse(posts []*model.Post) PostListResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p))
	}
	return PostListResponse{Posts: out, Count: len(out)}
}

func NewSavedVideosResponse(refs []model.SavedVideoRef) SavedVideosResponse {
	return SavedVideosResponse{SavedVideos: savedIDs(refs)}
}

func savedIDs(refs []model.SavedVideoRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}
