package screen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/session"
	"github.com/hszk-dev/aora/internal/usecase"
)

// fakeService implements usecase.Service with overridable functions.
// Operations without a function panic through the nil embedded interface.
type fakeService struct {
	usecase.Service

	getCurrentUserFn  func(ctx context.Context) (*model.User, error)
	getAllPostsFn     func(ctx context.Context) ([]*model.Post, error)
	getLatestPostsFn  func(ctx context.Context) ([]*model.Post, error)
	getUserPostsFn    func(ctx context.Context, userID string) ([]*model.Post, error)
	searchPostsFn     func(ctx context.Context, query string) ([]*model.Post, error)
	saveVideoFn       func(ctx context.Context, userID, videoID string) (bool, error)
	getSavedPostsFn   func(ctx context.Context, userID string) ([]model.SavedVideoRef, error)
	createVideoPostFn func(ctx context.Context, form model.PostForm) (*model.Post, error)

	mu        sync.Mutex
	calls     []string
	signedOut []string
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) GetCurrentUser(ctx context.Context) (*model.User, error) {
	f.record("GetCurrentUser")
	return f.getCurrentUserFn(ctx)
}

func (f *fakeService) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	f.record("GetAllPosts")
	return f.getAllPostsFn(ctx)
}

func (f *fakeService) GetLatestPosts(ctx context.Context) ([]*model.Post, error) {
	f.record("GetLatestPosts")
	return f.getLatestPostsFn(ctx)
}

func (f *fakeService) GetUserPosts(ctx context.Context, userID string) ([]*model.Post, error) {
	f.record("GetUserPosts")
	return f.getUserPostsFn(ctx, userID)
}

func (f *fakeService) SearchPosts(ctx context.Context, query string) ([]*model.Post, error) {
	f.record("SearchPosts")
	return f.searchPostsFn(ctx, query)
}

func (f *fakeService) SignOut(ctx context.Context) {
	f.record("SignOut")
	token, _ := session.TokenFromContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, token)
}

func (f *fakeService) SaveVideo(ctx context.Context, userID, videoID string) (bool, error) {
	f.record("SaveVideo")
	return f.saveVideoFn(ctx, userID, videoID)
}

func (f *fakeService) GetSavedPosts(ctx context.Context, userID string) ([]model.SavedVideoRef, error) {
	f.record("GetSavedPosts")
	return f.getSavedPostsFn(ctx, userID)
}

func (f *fakeService) CheckForUpdates(ctx context.Context, userID string) {
	f.record("CheckForUpdates")
}

func (f *fakeService) CreateVideoPost(ctx context.Context, form model.PostForm) (*model.Post, error) {
	f.record("CreateVideoPost")
	return f.createVideoPostFn(ctx, form)
}

func quiet() fetchstate.Option {
	return fetchstate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func signedIn() *Global {
	g := NewGlobal()
	g.SignIn(&model.User{ID: "u1", Username: "alice"}, &model.Session{ID: "s1", Token: "tok-1"})
	return g
}

func posts(ids ...string) []*model.Post {
	out := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.Post{ID: id, Title: "Post " + id})
	}
	return out
}

func TestGlobal_Load(t *testing.T) {
	t.Run("resolves user with session token", func(t *testing.T) {
		var token string
		svc := &fakeService{getCurrentUserFn: func(ctx context.Context) (*model.User, error) {
			token, _ = session.TokenFromContext(ctx)
			return &model.User{ID: "u9"}, nil
		}}
		g := NewGlobal()
		g.SignIn(nil, &model.Session{Token: "tok-9"})

		if err := g.Load(context.Background(), svc); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if token != "tok-9" {
			t.Errorf("token = %q, want tok-9", token)
		}
		if !g.IsLogged() || g.UserID() != "u9" {
			t.Errorf("IsLogged = %v, UserID = %q", g.IsLogged(), g.UserID())
		}
	})

	t.Run("not found signs out quietly", func(t *testing.T) {
		svc := &fakeService{getCurrentUserFn: func(ctx context.Context) (*model.User, error) {
			return nil, &model.NotFoundError{Resource: "account"}
		}}
		g := signedIn()

		if err := g.Load(context.Background(), svc); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if g.IsLogged() || g.UserID() != "" {
			t.Errorf("expected signed out, got IsLogged = %v, UserID = %q", g.IsLogged(), g.UserID())
		}
	})

	t.Run("remote failure is returned", func(t *testing.T) {
		svc := &fakeService{getCurrentUserFn: func(ctx context.Context) (*model.User, error) {
			return nil, &model.RemoteError{Op: "get current user", Err: errors.New("down")}
		}}
		g := signedIn()

		if err := g.Load(context.Background(), svc); err == nil {
			t.Error("expected an error")
		}
		if !g.IsLogged() {
			t.Error("state is kept on transient failures")
		}
	})
}

func TestHome_ActivateAndRefresh(t *testing.T) {
	svc := &fakeService{
		getAllPostsFn:    func(ctx context.Context) ([]*model.Post, error) { return posts("p1", "p2", "p3"), nil },
		getLatestPostsFn: func(ctx context.Context) ([]*model.Post, error) { return posts("p3"), nil },
	}
	home := NewHome(svc, quiet())

	home.Activate(context.Background())
	home.Activate(context.Background())
	home.Wait()

	if n := len(home.Posts.State().Data); n != 3 {
		t.Errorf("posts = %d, want 3", n)
	}
	if n := len(home.Latest.State().Data); n != 1 {
		t.Errorf("latest = %d, want 1", n)
	}
	if calls := svc.recorded(); len(calls) != 2 {
		t.Fatalf("activation should fetch once per hook, got %v", calls)
	}

	home.Refresh(context.Background())
	if got, want := svc.recorded()[2:], []string{"GetAllPosts", "GetLatestPosts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("refresh calls = %v, want %v", got, want)
	}
	if home.Posts.State().Loading || home.Latest.State().Loading {
		t.Error("Refresh should return after both hooks settle")
	}
}

func TestHome_FailureKeepsPosts(t *testing.T) {
	fail := false
	svc := &fakeService{
		getAllPostsFn: func(ctx context.Context) ([]*model.Post, error) {
			if fail {
				return nil, errors.New("network down")
			}
			return posts("p1"), nil
		},
		getLatestPostsFn: func(ctx context.Context) ([]*model.Post, error) { return posts(), nil },
	}
	home := NewHome(svc, quiet())
	home.Activate(context.Background())
	home.Wait()

	fail = true
	home.Refresh(context.Background())

	state := home.Posts.State()
	if state.Error != "Failed to retrieve data: network down" {
		t.Errorf("Error = %q", state.Error)
	}
	if len(state.Data) != 1 {
		t.Errorf("previous posts lost: %v", state.Data)
	}
}

func TestSearch_SetQuery(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	svc := &fakeService{searchPostsFn: func(ctx context.Context, query string) ([]*model.Post, error) {
		mu.Lock()
		queries = append(queries, query)
		mu.Unlock()
		if strings.TrimSpace(query) == "" {
			return nil, model.Required("query")
		}
		return posts(query + "-1"), nil
	}}
	search := NewSearch(svc, "sunset", quiet())

	search.Activate(context.Background())
	search.Results.Wait()
	if id := search.Results.State().Data[0].ID; id != "sunset-1" {
		t.Errorf("first result = %q, want sunset-1", id)
	}

	search.SetQuery(context.Background(), "ocean")
	search.Results.Wait()
	if search.Query() != "ocean" {
		t.Errorf("Query() = %q, want ocean", search.Query())
	}
	if id := search.Results.State().Data[0].ID; id != "ocean-1" {
		t.Errorf("first result = %q, want ocean-1", id)
	}

	search.SetQuery(context.Background(), "  ")
	search.Results.Wait()
	state := search.Results.State()
	if state.Status() != fetchstate.StatusError || !strings.Contains(state.Error, "Failed to retrieve data: ") {
		t.Errorf("blank query should fail, got %+v", state)
	}
	if state.Data[0].ID != "ocean-1" {
		t.Errorf("previous results lost: %v", state.Data)
	}

	mu.Lock()
	if want := []string{"sunset", "ocean", "  "}; !reflect.DeepEqual(queries, want) {
		t.Errorf("queries = %q, want %q", queries, want)
	}
	mu.Unlock()
}

func TestProfile(t *testing.T) {
	var gotUser string
	svc := &fakeService{getUserPostsFn: func(ctx context.Context, userID string) ([]*model.Post, error) {
		gotUser = userID
		return posts("p1", "p2"), nil
	}}
	global := signedIn()
	profile := NewProfile(svc, global, quiet())

	profile.Activate(context.Background())
	profile.Posts.Wait()

	if gotUser != "u1" {
		t.Errorf("GetUserPosts(%q), want u1", gotUser)
	}
	if profile.PostCount() != 2 {
		t.Errorf("PostCount() = %d, want 2", profile.PostCount())
	}
	if profile.Username() != "alice" {
		t.Errorf("Username() = %q, want alice", profile.Username())
	}

	profile.Logout(context.Background())
	if len(svc.signedOut) != 1 || svc.signedOut[0] != "tok-1" {
		t.Errorf("signed out tokens = %v, want [tok-1]", svc.signedOut)
	}
	if global.IsLogged() {
		t.Error("Logout should clear the global state")
	}
	if profile.Username() != "Unknown User" {
		t.Errorf("Username() = %q after logout", profile.Username())
	}
}

func TestBookmark_Toggle(t *testing.T) {
	saved := map[string]bool{"p1": true}
	svc := &fakeService{
		getSavedPostsFn: func(ctx context.Context, userID string) ([]model.SavedVideoRef, error) {
			refs := []model.SavedVideoRef{}
			for _, id := range []string{"p1", "p2"} {
				if saved[id] {
					refs = append(refs, model.SavedVideoRef{ID: id})
				}
			}
			return refs, nil
		},
		saveVideoFn: func(ctx context.Context, userID, videoID string) (bool, error) {
			if userID != "u1" {
				return false, model.Required("userId")
			}
			saved[videoID] = !saved[videoID]
			return saved[videoID], nil
		},
	}
	bookmark := NewBookmark(svc, signedIn(), quiet())
	bookmark.Activate(context.Background())
	bookmark.Saved.Wait()

	if !bookmark.IsSaved("p1") || bookmark.IsSaved("p2") {
		t.Fatalf("initial saved state wrong: p1=%v p2=%v", bookmark.IsSaved("p1"), bookmark.IsSaved("p2"))
	}

	ok, err := bookmark.Toggle(context.Background(), "p2")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !ok || !bookmark.IsSaved("p2") {
		t.Errorf("p2 should be saved, got ok=%v", ok)
	}

	ok, err = bookmark.Toggle(context.Background(), "p2")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if ok || bookmark.IsSaved("p2") {
		t.Errorf("p2 should be unsaved, got ok=%v", ok)
	}

	want := []string{
		"GetSavedPosts",
		"SaveVideo", "CheckForUpdates", "GetSavedPosts",
		"SaveVideo", "CheckForUpdates", "GetSavedPosts",
	}
	if got := svc.recorded(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestBookmark_ToggleFailureSkipsRefetch(t *testing.T) {
	svc := &fakeService{
		saveVideoFn: func(ctx context.Context, userID, videoID string) (bool, error) {
			return false, &model.RemoteError{Op: "toggle video save status", Err: errors.New("conflict")}
		},
	}
	bookmark := NewBookmark(svc, signedIn(), quiet())

	_, err := bookmark.Toggle(context.Background(), "p1")
	if !model.IsRemote(err) {
		t.Errorf("expected remote error, got %v", err)
	}
	if got := svc.recorded(); len(got) != 1 || got[0] != "SaveVideo" {
		t.Errorf("calls = %v, want [SaveVideo]", got)
	}
}

func asset(name string) *model.Asset {
	return &model.Asset{Name: name, Size: 1, Reader: strings.NewReader("x")}
}

func TestCreate_SubmitIncompleteKeepsForm(t *testing.T) {
	svc := &fakeService{}
	create := NewCreate(svc, signedIn())
	create.SetTitle("Sunset")
	if err := create.Pick(model.MediaImage, asset("t.png")); err != nil {
		t.Fatalf("Pick failed: %v", err)
	}

	_, err := create.Submit(context.Background())
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("Submit error = %v, want ErrMissingFields", err)
	}
	if create.Form().Title != "Sunset" {
		t.Error("incomplete form should be kept")
	}
	if calls := svc.recorded(); len(calls) != 0 {
		t.Errorf("unexpected calls: %v", calls)
	}
}

func TestCreate_SubmitResetsForm(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "success"},
		{name: "failure", err: &model.RemoteError{Op: "create video post", Err: errors.New("upload failed")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.PostForm
			var uploadingDuringCall bool
			var create *Create
			svc := &fakeService{createVideoPostFn: func(ctx context.Context, form model.PostForm) (*model.Post, error) {
				got = form
				uploadingDuringCall = create.Uploading()
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.Post{ID: "p-new", Title: form.Title}, nil
			}}
			create = NewCreate(svc, signedIn())
			create.SetTitle("Sunset")
			create.SetPrompt("a sunset")
			if err := create.Pick(model.MediaImage, asset("t.png")); err != nil {
				t.Fatalf("Pick thumbnail failed: %v", err)
			}
			if err := create.Pick(model.MediaVideo, asset("v.mp4")); err != nil {
				t.Fatalf("Pick video failed: %v", err)
			}

			post, err := create.Submit(context.Background())
			if tt.wantErr {
				if err == nil || post != nil {
					t.Errorf("Submit() = %v, %v; want nil, error", post, err)
				}
			} else {
				if err != nil {
					t.Fatalf("Submit failed: %v", err)
				}
				if post.ID != "p-new" {
					t.Errorf("post ID = %q, want p-new", post.ID)
				}
			}

			if !uploadingDuringCall {
				t.Error("Uploading() should be true during the call")
			}
			if got.UserID != "u1" || got.Thumbnail.Name != "t.png" || got.Video.Name != "v.mp4" {
				t.Errorf("unexpected form: %+v", got)
			}
			if create.Form() != (CreateForm{}) {
				t.Errorf("form not reset: %+v", create.Form())
			}
			if create.Uploading() {
				t.Error("Uploading() should be false after the call")
			}
		})
	}
}

func TestCreate_PickRejectsUnknownType(t *testing.T) {
	create := NewCreate(&fakeService{}, signedIn())
	if err := create.Pick("audio", asset("a.mp3")); !model.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
