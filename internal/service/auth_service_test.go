package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"snippets/internal/errors"
	"snippets/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		// run the save hook like gorm would
		if err := user.BeforeSave(nil); err != nil {
			return err
		}
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func hashedUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	u := model.NewUser(username, password)
	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("hash user: %v", err)
	}
	return u
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: " alice ",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "user already exists",
			username: "alice",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
			},
			expectedError: errors.ErrUserAlreadyExists,
		},
		{
			name:     "unique index fires on a race",
			username: "alice",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo)
			user, err := svc.Register(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "alice", user.Username)
				assert.NotEqual(t, tt.password, user.Password)
				assert.True(t, user.CheckPassword(tt.password))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterShortPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	_, err := NewAuthService(mockRepo).Register(context.Background(), "bob", "short")

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAuthService_Authenticate(t *testing.T) {
	alice := hashedUser(t, "alice", "correct horse battery")

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "valid credentials",
			username: "alice",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong password!!",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "username is trimmed",
			username: "  alice  ",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
		},
		{
			name:     "unknown user",
			username: "mallory",
			password: "correct horse battery",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "mallory").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			user, err := NewAuthService(mockRepo).Authenticate(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AuthenticateStoreFailure(t *testing.T) {
	dbErr := stderrors.New("connection refused")
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, dbErr)

	user, err := NewAuthService(mockRepo).Authenticate(context.Background(), "alice", "correct horse battery")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, errors.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}
