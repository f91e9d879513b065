package handler

import (
	"context"
	"go-auth-api/model"
	"go-auth-api/service"

	"github.com/stretchr/testify/mock"
)

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Register(ctx context.Context, email, password, name string, client model.ClientInfo) (*model.User, error) {
	args := m.Called(ctx, email, password, name, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockSessions) Login(ctx context.Context, email, password string, client model.ClientInfo) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *mockSessions) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockSessions) Logout(ctx context.Context, refreshToken string, caller *model.AuthenticatedCaller, client model.ClientInfo) {
	m.Called(ctx, refreshToken, caller, client)
}

func (m *mockSessions) Me(ctx context.Context, caller model.AuthenticatedCaller) (*model.PublicUser, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicUser), args.Error(1)
}

func (m *mockSessions) UpdateProfile(ctx context.Context, caller model.AuthenticatedCaller, name, email string, client model.ClientInfo) (*model.PublicUser, error) {
	args := m.Called(ctx, caller, name, email, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicUser), args.Error(1)
}

func (m *mockSessions) ChangePassword(ctx context.Context, caller model.AuthenticatedCaller, currentPassword, newPassword string, client model.ClientInfo) error {
	args := m.Called(ctx, caller, currentPassword, newPassword, client)
	return args.Error(0)
}

type mockAuditReader struct{ mock.Mock }

func (m *mockAuditReader) ByUser(ctx context.Context, userID, limit, offset int) (*model.AuditPage, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditPage), args.Error(1)
}

func (m *mockAuditReader) LoginStats(ctx context.Context, userID int) (*model.LoginStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginStats), args.Error(1)
}
