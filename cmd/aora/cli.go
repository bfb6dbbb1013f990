package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hszk-dev/aora/internal/api/handler"
	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/screen"
	"github.com/hszk-dev/aora/internal/usecase"
)

var (
	errUsage       = errors.New("invalid usage")
	errNotSignedIn = errors.New("not signed in, run: aora signin")
)

const usageText = `usage: aora <command> [flags]

commands:
  signup   -username NAME -email EMAIL -password PASSWORD
  signin   -email EMAIL -password PASSWORD
  signout
  whoami
  home
  search   QUERY
  profile
  saved
  save     VIDEO_ID
  create   -title TITLE -prompt PROMPT -thumbnail FILE -video FILE
  preview  -type image|video FILE_ID
`

func usage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// sessionStore is satisfied by sessionFile.
type sessionStore interface {
	Load() (*model.Session, error)
	Save(sess *model.Session) error
	Clear() error
}

type cli struct {
	svc      usecase.Service
	sessions sessionStore
	global   *screen.Global
	out      io.Writer
	hookOpts []fetchstate.Option
}

func newCLI(svc usecase.Service, sessions sessionStore, out io.Writer, logger *slog.Logger) *cli {
	return &cli{
		svc:      svc,
		sessions: sessions,
		global:   screen.NewGlobal(),
		out:      out,
		hookOpts: []fetchstate.Option{fetchstate.WithLogger(logger)},
	}
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "signup":
		return c.signUp(ctx, rest)
	case "signin":
		return c.signIn(ctx, rest)
	}

	if err := c.restore(ctx); err != nil {
		return err
	}

	switch cmd {
	case "signout":
		return c.signOut(ctx)
	case "whoami":
		return c.whoami()
	case "home":
		return c.home(ctx)
	case "search":
		return c.search(ctx, rest)
	case "profile":
		return c.profile(ctx)
	case "saved":
		return c.saved(ctx)
	case "save":
		return c.save(ctx, rest)
	case "create":
		return c.create(ctx, rest)
	case "preview":
		return c.preview(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// restore reloads the stored session and resolves its user.
func (c *cli) restore(ctx context.Context) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	c.global.SignIn(nil, sess)
	return c.global.Load(ctx, c.svc)
}

func (c *cli) requireUser() error {
	if !c.global.IsLogged() {
		return errNotSignedIn
	}
	return nil
}

func (c *cli) signUp(ctx context.Context, args []string) error {
	fs := newFlagSet("signup")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := c.svc.CreateUser(ctx, usecase.CreateUserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	if err := c.sessions.Save(out.Session); err != nil {
		return err
	}
	c.global.SignIn(out.User, out.Session)

	return c.print(handler.NewUserResponse(out.User))
}

func (c *cli) signIn(ctx context.Context, args []string) error {
	fs := newFlagSet("signin")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.svc.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := c.sessions.Save(sess); err != nil {
		return err
	}
	c.global.SignIn(nil, sess)
	if err := c.global.Load(ctx, c.svc); err != nil {
		return err
	}
	if err := c.requireUser(); err != nil {
		return err
	}

	return c.print(handler.NewUserResponse(c.global.User()))
}

func (c *cli) signOut(ctx context.Context) error {
	screen.NewProfile(c.svc, c.global, c.hookOpts...).Logout(ctx)
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	return c.print(map[string]bool{"signed_out": true})
}

func (c *cli) whoami() error {
	if err := c.requireUser(); err != nil {
		return err
	}
	return c.print(handler.NewUserResponse(c.global.User()))
}

func (c *cli) home(ctx context.Context) error {
	h := screen.NewHome(c.svc, c.hookOpts...)
	h.Activate(ctx)
	h.Wait()

	return c.print(map[string]any{
		"posts":  postsView(h.Posts.State()),
		"latest": postsView(h.Latest.State()),
	})
}

func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: search takes exactly one query", errUsage)
	}

	s := screen.NewSearch(c.svc, args[0], c.hookOpts...)
	s.Activate(ctx)
	s.Results.Wait()

	return c.print(map[string]any{
		"query":   s.Query(),
		"results": postsView(s.Results.State()),
	})
}

func (c *cli) profile(ctx context.Context) error {
	if err := c.requireUser(); err != nil {
		return err
	}

	p := screen.NewProfile(c.svc, c.global, c.hookOpts...)
	p.Activate(ctx)
	p.Posts.Wait()

	return c.print(map[string]any{
		"username":   p.Username(),
		"post_count": p.PostCount(),
		"posts":      postsView(p.Posts.State()),
	})
}

func (c *cli) saved(ctx context.Context) error {
	if err := c.requireUser(); err != nil {
		return err
	}

	b := screen.NewBookmark(c.svc, c.global, c.hookOpts...)
	b.Activate(ctx)
	b.Saved.Wait()

	return c.print(savedView(b.Saved.State()))
}

func (c *cli) save(ctx context.Context, args []string) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: save takes exactly one video id", errUsage)
	}

	b := screen.NewBookmark(c.svc, c.global, c.hookOpts...)
	saved, err := b.Toggle(ctx, args[0])
	if err != nil {
		return err
	}

	return c.print(map[string]any{
		"video_id": args[0],
		"saved":    saved,
		"list":     savedView(b.Saved.State()),
	})
}

func (c *cli) create(ctx context.Context, args []string) error {
	if err := c.requireUser(); err != nil {
		return err
	}

	fs := newFlagSet("create")
	title := fs.String("title", "", "post title")
	prompt := fs.String("prompt", "", "AI prompt used for the video")
	thumbnail := fs.String("thumbnail", "", "path to the thumbnail image")
	video := fs.String("video", "", "path to the video file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := screen.NewCreate(c.svc, c.global)
	form.SetTitle(*title)
	form.SetPrompt(*prompt)

	for _, pick := range []struct {
		mediaType model.MediaType
		path      string
	}{
		{model.MediaImage, *thumbnail},
		{model.MediaVideo, *video},
	} {
		if pick.path == "" {
			continue
		}
		asset, closeFn, err := openAsset(pick.path)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := form.Pick(pick.mediaType, asset); err != nil {
			return err
		}
	}

	post, err := form.Submit(ctx)
	if errors.Is(err, screen.ErrMissingFields) {
		return errors.New(screen.MissingFieldsMessage)
	}
	if err != nil {
		return err
	}

	return c.print(handler.NewPostResponse(post))
}

func (c *cli) preview(ctx context.Context, args []string) error {
	fs := newFlagSet("preview")
	mediaType := fs.String("type", string(model.MediaImage), "image or video")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: preview takes exactly one file id", errUsage)
	}

	url, err := c.svc.GetFilePreview(ctx, fs.Arg(0), model.MediaType(*mediaType))
	if err != nil {
		return err
	}
	return c.print(handler.FileURLResponse{URL: url})
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// openAsset leaves MimeType empty so the content type is sniffed on upload.
func openAsset(path string) (*model.Asset, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &model.Asset{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Reader: f,
	}, func() { _ = f.Close() }, nil
}

type stateView[V any] struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   V      `json:"data"`
}

func postsView(s fetchstate.State[[]*model.Post]) stateView[handler.PostListResponse] {
	return stateView[handler.PostListResponse]{
		Status: string(s.Status()),
		Error:  s.Error,
		Data:   handler.NewPostListResponse(s.Data),
	}
}

func savedView(s fetchstate.State[[]model.SavedVideoRef]) stateView[handler.SavedVideosResponse] {
	return stateView[handler.SavedVideosResponse]{
		Status: string(s.Status()),
		Error:  s.Error,
		Data:   handler.NewSavedVideosResponse(s.Data),
	}
}
