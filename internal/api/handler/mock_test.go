package handler

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Mock Service

type mockService struct {
	createUserFn      func(ctx context.Context, input usecase.CreateUserInput) (*usecase.CreateUserOutput, error)
	signInFn          func(ctx context.Context, email, password string) (*model.Session, error)
	signOutFn         func(ctx context.Context)
	getCurrentUserFn  func(ctx context.Context) (*model.User, error)
	getUserPostsFn    func(ctx context.Context, userID string) ([]*model.Post, error)
	getAllPostsFn     func(ctx context.Context) ([]*model.Post, error)
	getLatestPostsFn  func(ctx context.Context) ([]*model.Post, error)
	searchPostsFn     func(ctx context.Context, query string) ([]*model.Post, error)
	uploadFileFn      func(ctx context.Context, asset *model.Asset, mediaType model.MediaType) (string, error)
	getFilePreviewFn  func(ctx context.Context, fileID string, mediaType model.MediaType) (string, error)
	createVideoPostFn func(ctx context.Context, form model.PostForm) (*model.Post, error)
	saveVideoFn       func(ctx context.Context, userID, videoID string) (bool, error)
	getSavedPostsFn   func(ctx context.Context, userID string) ([]model.SavedVideoRef, error)
	checkForUpdatesFn func(ctx context.Context, userID string)
}

var _ usecase.Service = (*mockService)(nil)

func (m *mockService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*usecase.CreateUserOutput, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, input)
	}
	return nil, nil
}

func (m *mockService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockService) SignOut(ctx context.Context) {
	if m.signOutFn != nil {
		m.signOutFn(ctx)
	}
}

func (m *mockService) GetCurrentUser(ctx context.Context) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx)
	}
	return nil, nil
}

func (m *mockService) GetUserPosts(ctx context.Context, userID string) ([]*model.Post, error) {
	if m.getUserPostsFn != nil {
		return m.getUserPostsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockService) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	if m.getAllPostsFn != nil {
		return m.getAllPostsFn(ctx)
	}
	return nil, nil
}

func (m *mockService) GetLatestPosts(ctx context.Context) ([]*model.Post, error) {
	if m.getLatestPostsFn != nil {
		return m.getLatestPostsFn(ctx)
	}
	return nil, nil
}

func (m *mockService) SearchPosts(ctx context.Context, query string) ([]*model.Post, error) {
	if m.searchPostsFn != nil {
		return m.searchPostsFn(ctx, query)
	}
	return nil, nil
}

func (m *mockService) UploadFile(ctx context.Context, asset *model.Asset, mediaType model.MediaType) (string, error) {
	if m.uploadFileFn != nil {
		return m.uploadFileFn(ctx, asset, mediaType)
	}
	return "", nil
}

func (m *mockService) GetFilePreview(ctx context.Context, fileID string, mediaType model.MediaType) (string, error) {
	if m.getFilePreviewFn != nil {
		return m.getFilePreviewFn(ctx, fileID, mediaType)
	}
	return "", nil
}

func (m *mockService) CreateVideoPost(ctx context.Context, form model.PostForm) (*model.Post, error) {
	if m.createVideoPostFn != nil {
		return m.createVideoPostFn(ctx, form)
	}
	return nil, nil
}

func (m *mockService) SaveVideo(ctx context.Context, userID, videoID string) (bool, error) {
	if m.saveVideoFn != nil {
		return m.saveVideoFn(ctx, userID, videoID)
	}
	return false, nil
}

func (m *mockService) GetSavedPosts(ctx context.Context, userID string) ([]model.SavedVideoRef, error) {
	if m.getSavedPostsFn != nil {
		return m.getSavedPostsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockService) CheckForUpdates(ctx context.Context, userID string) {
	if m.checkForUpdatesFn != nil {
		m.checkForUpdatesFn(ctx, userID)
	}
}
