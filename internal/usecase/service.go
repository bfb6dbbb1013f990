package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
	"github.com/hszk-dev/aora/internal/session"
)

// Operation names used in errors, logs and metrics.
const (
	OpCreateUser      = "create user"
	OpSignIn          = "sign in"
	OpSignOut         = "sign out"
	OpGetCurrentUser  = "get current user"
	OpGetUserPosts    = "get user posts"
	OpGetAllPosts     = "get all posts"
	OpGetLatestPosts  = "get latest posts"
	OpSearchPosts     = "search posts"
	OpUploadFile      = "upload file"
	OpGetFilePreview  = "get file preview"
	OpCreateVideoPost = "create video post"
	OpSaveVideo       = "toggle video save status"
	OpGetSavedPosts   = "retrieve saved posts"
	OpCheckForUpdates = "check for updates"
	OpPublishEvent    = "publish event"
)

// sniffLimit is how many leading bytes are inspected when an asset carries no MIME type.
const sniffLimit = 3072

// CreateUserInput contains the input parameters for creating a user.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// CreateUserOutput contains the created profile and the session opened for it.
type CreateUserOutput struct {
	User    *model.User
	Session *model.Session
}

// Service defines the remote access operations of the app.
type Service interface {
	// CreateUser registers an account, signs it in and creates its profile.
	// A failure after the account exists leaves the account in place.
	CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserOutput, error)

	// SignIn opens a session for the given credentials.
	SignIn(ctx context.Context, email, password string) (*model.Session, error)

	// SignOut revokes the session carried by ctx. Failures are reported, never returned.
	SignOut(ctx context.Context)

	// GetCurrentUser returns the profile of the account behind the session in ctx.
	GetCurrentUser(ctx context.Context) (*model.User, error)

	GetUserPosts(ctx context.Context, userID string) ([]*model.Post, error)
	GetAllPosts(ctx context.Context) ([]*model.Post, error)

	// GetLatestPosts returns the newest posts first, capped at the configured limit.
	GetLatestPosts(ctx context.Context) ([]*model.Post, error)

	// SearchPosts runs a full-text search over post titles.
	SearchPosts(ctx context.Context, query string) ([]*model.Post, error)

	// UploadFile stores asset and returns its derived URL. A nil asset is a no-op.
	UploadFile(ctx context.Context, asset *model.Asset, mediaType model.MediaType) (string, error)

	// GetFilePreview returns a playable URL for videos and a resized URL for images.
	GetFilePreview(ctx context.Context, fileID string, mediaType model.MediaType) (string, error)

	// CreateVideoPost uploads both assets concurrently and then records the post.
	CreateVideoPost(ctx context.Context, form model.PostForm) (*model.Post, error)

	// SaveVideo toggles videoID in the user's saved list. saved reports the new membership.
	SaveVideo(ctx context.Context, userID, videoID string) (saved bool, err error)

	GetSavedPosts(ctx context.Context, userID string) ([]model.SavedVideoRef, error)

	// CheckForUpdates re-reads the user profile and logs it. Failures are reported, never returned.
	CheckForUpdates(ctx context.Context, userID string)
}

// ServiceConfig holds configuration for Service.
type ServiceConfig struct {
	UsersCollection  string
	VideosCollection string
	LatestLimit      int
	PreviewWidth     int
	PreviewHeight    int
	SaveMaxAttempts  int

	// OnBestEffortFailure observes failures that are swallowed by design.
	// Defaults to logging and counting them.
	OnBestEffortFailure func(op string, err error)
}

// DefaultServiceConfig returns the default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UsersCollection:  "users",
		VideosCollection: "videos",
		LatestLimit:      7,
		PreviewWidth:     2000,
		PreviewHeight:    2000,
		SaveMaxAttempts:  5,
	}
}

type service struct {
	docs    repository.DocumentStore
	files   repository.ObjectStorage
	auth    repository.AuthService
	avatars repository.Avatars
	events  repository.EventPublisher

	validate *validator.Validate
	cfg      ServiceConfig
}

// NewService creates a new Service instance.
// events may be nil, in which case no activity events are published.
func NewService(
	docs repository.DocumentStore,
	files repository.ObjectStorage,
	auth repository.AuthService,
	avatars repository.Avatars,
	events repository.EventPublisher,
	cfg ServiceConfig,
) Service {
	defaults := DefaultServiceConfig()
	if cfg.UsersCollection == "" {
		cfg.UsersCollection = defaults.UsersCollection
	}
	if cfg.VideosCollection == "" {
		cfg.VideosCollection = defaults.VideosCollection
	}
	if cfg.LatestLimit < 1 {
		cfg.LatestLimit = defaults.LatestLimit
	}
	if cfg.PreviewWidth < 1 {
		cfg.PreviewWidth = defaults.PreviewWidth
	}
	if cfg.PreviewHeight < 1 {
		cfg.PreviewHeight = defaults.PreviewHeight
	}
	if cfg.SaveMaxAttempts < 1 {
		cfg.SaveMaxAttempts = defaults.SaveMaxAttempts
	}
	if cfg.OnBestEffortFailure == nil {
		cfg.OnBestEffortFailure = logBestEffortFailure
	}

	return &service{
		docs:     docs,
		files:    files,
		auth:     auth,
		avatars:  avatars,
		events:   events,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cfg:      cfg,
	}
}

func logBestEffortFailure(op string, err error) {
	metrics.BestEffortFailuresTotal.WithLabelValues(op).Inc()
	slog.Warn("best-effort operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// CreateUser creates the account first, then the session, then the profile document.
func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (out *CreateUserOutput, err error) {
	defer func() { s.observe(OpCreateUser, err, slog.String("email", input.Email)) }()

	switch {
	case input.Username == "":
		return nil, model.Required("username")
	case input.Email == "":
		return nil, model.Required("email")
	case input.Password == "":
		return nil, model.Required("password")
	}

	account, err := s.auth.CreateAccount(ctx, uuid.NewString(), input.Email, input.Password, input.Username)
	if err != nil {
		return nil, remote(OpCreateUser, err)
	}

	avatarURL := s.avatars.InitialsURL(input.Username)

	sess, err := s.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, remote(OpCreateUser, err)
	}

	doc, err := s.docs.Create(ctx, s.cfg.UsersCollection, uuid.NewString(), map[string]any{
		"accountId":   account.ID,
		"email":       account.Email,
		"username":    input.Username,
		"avatar":      avatarURL,
		"savedVideos": []any{},
	})
	if err != nil {
		return nil, remote(OpCreateUser, err)
	}

	user, err := model.ParseUser(doc)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, repository.NewActivityEvent(repository.EventUserCreated, user.ID, ""))

	return &CreateUserOutput{User: user, Session: sess}, nil
}

// SignIn validates the credentials are present and opens a session.
func (s *service) SignIn(ctx context.Context, email, password string) (sess *model.Session, err error) {
	defer func() { s.observe(OpSignIn, err, slog.String("email", email)) }()

	if email == "" {
		return nil, model.Required("email")
	}
	if password == "" {
		return nil, model.Required("password")
	}

	sess, err = s.auth.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		return nil, remote(OpSignIn, err)
	}
	return sess, nil
}

// SignOut deletes the current session on a best-effort basis.
func (s *service) SignOut(ctx context.Context) {
	token, ok := session.TokenFromContext(ctx)
	if !ok {
		s.bestEffort(OpSignOut, repository.ErrUnauthorized)
		return
	}
	if err := s.auth.DeleteSession(ctx, token); err != nil {
		s.bestEffort(OpSignOut, err)
		return
	}
	metrics.ObserveRemote(OpSignOut, nil)
}

// GetCurrentUser resolves the session account, then finds the profile by account id.
func (s *service) GetCurrentUser(ctx context.Context) (user *model.User, err error) {
	defer func() { s.observe(OpGetCurrentUser, err) }()

	token, ok := session.TokenFromContext(ctx)
	if !ok {
		return nil, &model.NotFoundError{Resource: "account"}
	}

	account, err := s.auth.GetAccount(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUnauthorized) {
			return nil, &model.NotFoundError{Resource: "account"}
		}
		return nil, remote(OpGetCurrentUser, err)
	}

	docs, err := s.docs.List(ctx, s.cfg.UsersCollection, repository.Equal("accountId", account.ID))
	if err != nil {
		return nil, remote(OpGetCurrentUser, err)
	}
	if len(docs) == 0 {
		return nil, &model.NotFoundError{Resource: "user", Key: account.ID}
	}

	return model.ParseUser(docs[0])
}

func (s *service) GetUserPosts(ctx context.Context, userID string) (posts []*model.Post, err error) {
	defer func() { s.observe(OpGetUserPosts, err, slog.String("user_id", userID)) }()

	if userID == "" {
		return nil, model.Required("userId")
	}
	return s.listPosts(ctx, OpGetUserPosts, repository.Equal("users", userID))
}

func (s *service) GetAllPosts(ctx context.Context) (posts []*model.Post, err error) {
	defer func() { s.observe(OpGetAllPosts, err) }()

	return s.listPosts(ctx, OpGetAllPosts)
}

func (s *service) GetLatestPosts(ctx context.Context) (posts []*model.Post, err error) {
	defer func() { s.observe(OpGetLatestPosts, err) }()

	return s.listPosts(ctx, OpGetLatestPosts, s.latestQueries()...)
}

func (s *service) latestQueries() []repository.Query {
	return []repository.Query{
		repository.OrderDesc(model.AttrCreatedAt),
		repository.Limit(s.cfg.LatestLimit),
	}
}

// SearchPosts never sends an empty or whitespace-only query to the store.
func (s *service) SearchPosts(ctx context.Context, query string) (posts []*model.Post, err error) {
	defer func() { s.observe(OpSearchPosts, err, slog.String("query", query)) }()

	term := strings.TrimSpace(query)
	if term == "" {
		return nil, model.Required("query")
	}
	return s.listPosts(ctx, OpSearchPosts, repository.Search("title", term))
}

func (s *service) listPosts(ctx context.Context, op string, queries ...repository.Query) ([]*model.Post, error) {
	docs, err := s.docs.List(ctx, s.cfg.VideosCollection, queries...)
	if err != nil {
		return nil, remote(op, err)
	}
	return model.ParsePosts(docs)
}

// UploadFile stores the asset under a new ulid and resolves its URL.
func (s *service) UploadFile(ctx context.Context, asset *model.Asset, mediaType model.MediaType) (fileURL string, err error) {
	if asset == nil {
		return "", nil
	}
	defer func() { s.observe(OpUploadFile, err, slog.String("name", asset.Name)) }()

	if !mediaType.IsValid() {
		return "", &model.ValidationError{Field: "type", Reason: fmt.Sprintf("must be image or video, got %q", mediaType)}
	}
	if asset.Reader == nil {
		return "", model.Required("file")
	}

	reader, contentType, err := retag(asset)
	if err != nil {
		return "", remote(OpUploadFile, err)
	}

	fileID := ulid.Make().String()
	if err := s.files.Upload(ctx, fileID, reader, asset.Size, contentType); err != nil {
		return "", remote(OpUploadFile, err)
	}

	return s.fileURL(ctx, fileID, mediaType)
}

// retag returns the content type to store asset under.
// A declared type wins. Otherwise the leading bytes are sniffed and replayed.
func retag(asset *model.Asset) (io.Reader, string, error) {
	if asset.MimeType != "" {
		return asset.Reader, asset.MimeType, nil
	}

	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(asset.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", fmt.Errorf("read file header: %w", err)
	}
	head = head[:n]

	return io.MultiReader(bytes.NewReader(head), asset.Reader), mimetype.Detect(head).String(), nil
}

func (s *service) GetFilePreview(ctx context.Context, fileID string, mediaType model.MediaType) (fileURL string, err error) {
	defer func() { s.observe(OpGetFilePreview, err, slog.String("file_id", fileID)) }()

	if !mediaType.IsValid() {
		return "", &model.ValidationError{Field: "type", Reason: fmt.Sprintf("must be image or video, got %q", mediaType)}
	}
	if fileID == "" {
		return "", model.Required("fileId")
	}

	// Signing a URL never touches the bucket, so look the object up first.
	exists, err := s.files.Exists(ctx, fileID)
	if err != nil {
		return "", remote(OpGetFilePreview, err)
	}
	if !exists {
		return "", &model.NotFoundError{Resource: "file", Key: fileID}
	}

	return s.fileURL(ctx, fileID, mediaType)
}

// fileURL derives the URL of a stored object: the plain view URL for videos,
// a preview URL with the size hint for images.
func (s *service) fileURL(ctx context.Context, fileID string, mediaType model.MediaType) (string, error) {
	var (
		fileURL string
		err     error
	)
	switch mediaType {
	case model.MediaVideo:
		fileURL, err = s.files.ViewURL(ctx, fileID)
	default:
		fileURL, err = s.files.PreviewURL(ctx, fileID, s.cfg.PreviewWidth, s.cfg.PreviewHeight)
	}
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return "", &model.NotFoundError{Resource: "file", Key: fileID}
		}
		return "", remote(OpGetFilePreview, err)
	}
	if fileURL == "" {
		return "", &model.NotFoundError{Resource: "file", Key: fileID}
	}
	return fileURL, nil
}

// CreateVideoPost fails as a whole if either upload fails.
// Blobs that did upload are left in storage.
func (s *service) CreateVideoPost(ctx context.Context, form model.PostForm) (post *model.Post, err error) {
	defer func() { s.observe(OpCreateVideoPost, err, slog.String("user_id", form.UserID)) }()

	if err := s.validateForm(form); err != nil {
		return nil, err
	}

	var thumbnailURL, videoURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.UploadFile(gctx, form.Thumbnail, model.MediaImage)
		thumbnailURL = u
		return err
	})
	g.Go(func() error {
		u, err := s.UploadFile(gctx, form.Video, model.MediaVideo)
		videoURL = u
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, classify(OpCreateVideoPost, err)
	}

	doc, err := s.docs.Create(ctx, s.cfg.VideosCollection, uuid.NewString(), map[string]any{
		"title":     form.Title,
		"thumbnail": thumbnailURL,
		"video":     videoURL,
		"prompt":    form.Prompt,
		"users":     form.UserID,
	})
	if err != nil {
		return nil, remote(OpCreateVideoPost, err)
	}

	post, err = model.ParsePost(doc)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, repository.NewActivityEvent(repository.EventPostCreated, form.UserID, post.ID))

	return post, nil
}

func (s *service) validateForm(form model.PostForm) error {
	if err := s.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return model.Required(lowerFirst(fieldErrs[0].Field()))
		}
		return &model.ValidationError{Field: "form", Reason: err.Error()}
	}
	if err := model.ValidateTitle(form.Title); err != nil {
		return &model.ValidationError{Field: "title", Reason: err.Error()}
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// SaveVideo toggles membership with a compare-and-swap on the user document version.
// A conflicting write restarts from the read, up to SaveMaxAttempts attempts.
func (s *service) SaveVideo(ctx context.Context, userID, videoID string) (saved bool, err error) {
	defer func() {
		s.observe(OpSaveVideo, err, slog.String("user_id", userID), slog.String("video_id", videoID))
	}()

	if userID == "" {
		return false, model.Required("userId")
	}
	if videoID == "" {
		return false, model.Required("videoId")
	}

	for attempt := 1; attempt <= s.cfg.SaveMaxAttempts; attempt++ {
		user, err := s.getUser(ctx, OpSaveVideo, userID)
		if err != nil {
			return false, err
		}

		next, saved := user.ToggleSaved(videoID)
		_, err = s.docs.UpdateIfVersion(ctx, s.cfg.UsersCollection, userID, user.Version, map[string]any{
			"savedVideos": model.SavedRefsData(next),
		})
		if err == nil {
			typ := repository.EventVideoUnsaved
			if saved {
				typ = repository.EventVideoSaved
			}
			s.publish(ctx, repository.NewActivityEvent(typ, userID, videoID))
			return saved, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			if errors.Is(err, repository.ErrDocumentNotFound) {
				return false, &model.NotFoundError{Resource: "user", Key: userID}
			}
			return false, remote(OpSaveVideo, err)
		}

		metrics.SaveToggleConflictsTotal.Inc()
		slog.Debug("save toggle conflicted, retrying",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt),
		)
	}

	return false, remote(OpSaveVideo, repository.ErrVersionConflict)
}

// GetSavedPosts returns the saved list, empty when there are none.
func (s *service) GetSavedPosts(ctx context.Context, userID string) (refs []model.SavedVideoRef, err error) {
	defer func() { s.observe(OpGetSavedPosts, err, slog.String("user_id", userID)) }()

	if userID == "" {
		return nil, model.Required("userId")
	}

	user, err := s.getUser(ctx, OpGetSavedPosts, userID)
	if err != nil {
		return nil, err
	}
	if user.SavedVideos == nil {
		return []model.SavedVideoRef{}, nil
	}
	return user.SavedVideos, nil
}

func (s *service) CheckForUpdates(ctx context.Context, userID string) {
	if userID == "" {
		s.bestEffort(OpCheckForUpdates, model.Required("userId"))
		return
	}

	user, err := s.getUser(ctx, OpCheckForUpdates, userID)
	if err != nil {
		s.bestEffort(OpCheckForUpdates, err)
		return
	}

	slog.Info("fetched updated user document",
		slog.String("user_id", user.ID),
		slog.Int("saved_videos", len(user.SavedVideos)),
		slog.Int64("version", user.Version),
		slog.Time("updated_at", user.UpdatedAt),
	)
}

func (s *service) getUser(ctx context.Context, op, userID string) (*model.User, error) {
	doc, err := s.docs.Get(ctx, s.cfg.UsersCollection, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, &model.NotFoundError{Resource: "user", Key: userID}
		}
		return nil, remote(op, err)
	}
	return model.ParseUser(doc)
}

func (s *service) publish(ctx context.Context, event repository.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.bestEffort(OpPublishEvent, fmt.Errorf("%s: %w", event.Type, err))
	}
}

func (s *service) bestEffort(op string, err error) {
	metrics.ObserveRemote(op, err)
	s.cfg.OnBestEffortFailure(op, err)
}

// observe records the outcome of op and logs failures at the boundary.
func (s *service) observe(op string, err error, attrs ...slog.Attr) {
	metrics.ObserveRemote(op, err)
	if err == nil {
		return
	}

	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("operation", op))
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))

	if model.IsValidation(err) || model.IsNotFound(err) {
		slog.Info("remote operation rejected", args...)
		return
	}
	slog.Error("remote operation failed", args...)
}

func remote(op string, err error) error {
	return &model.RemoteError{Op: op, Err: err}
}

// classify keeps already-classified errors and wraps anything else as remote.
func classify(op string, err error) error {
	if model.IsValidation(err) || model.IsRemote(err) || model.IsNotFound(err) || model.IsSchema(err) {
		return err
	}
	return remote(op, err)
}
