package testutil

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

// MockAPI is a testify mock of the typed BizMate endpoints.
type MockAPI struct {
	mock.Mock
}

// NewMockAPI creates a mock with no expectations.
func NewMockAPI(t *testing.T) *MockAPI {
	t.Helper()
	m := new(MockAPI)
	m.Test(t)
	return m
}

// SendChat mocks the SendChat method.
func (m *MockAPI) SendChat(ctx context.Context, content, platform string) (types.ChatReply, error) {
	args := m.Called(ctx, content, platform)
	return args.Get(0).(types.ChatReply), args.Error(1)
}

// GenerateContent mocks the GenerateContent method.
func (m *MockAPI) GenerateContent(ctx context.Context, topic string) (types.GeneratedContent, error) {
	args := m.Called(ctx, topic)
	return args.Get(0).(types.GeneratedContent), args.Error(1)
}

// CreateScheduledPost mocks the CreateScheduledPost method.
func (m *MockAPI) CreateScheduledPost(ctx context.Context, req types.PostRequest) (types.ScheduledPost, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.ScheduledPost), args.Error(1)
}

// ListScheduledPosts mocks the ListScheduledPosts method.
func (m *MockAPI) ListScheduledPosts(ctx context.Context) ([]types.ScheduledPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ScheduledPost), args.Error(1)
}

// UpdateScheduledPost mocks the UpdateScheduledPost method.
func (m *MockAPI) UpdateScheduledPost(ctx context.Context, id int64, req types.PostRequest) (types.ScheduledPost, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(types.ScheduledPost), args.Error(1)
}

// DeleteScheduledPost mocks the DeleteScheduledPost method.
func (m *MockAPI) DeleteScheduledPost(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ListPosts mocks the ListPosts method.
func (m *MockAPI) ListPosts(ctx context.Context) ([]types.ScheduledPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ScheduledPost), args.Error(1)
}

// GeneratePost mocks the GeneratePost method.
func (m *MockAPI) GeneratePost(ctx context.Context, req types.GeneratePostRequest) (types.GeneratedPost, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.GeneratedPost), args.Error(1)
}

// GetProfile mocks the GetProfile method.
func (m *MockAPI) GetProfile(ctx context.Context) (types.BusinessProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.BusinessProfile), args.Error(1)
}

// SaveProfile mocks the SaveProfile method.
func (m *MockAPI) SaveProfile(ctx context.Context, profile types.BusinessProfile) (types.BusinessProfile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(types.BusinessProfile), args.Error(1)
}
