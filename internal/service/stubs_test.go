package service

import (
	"context"
	"testing"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateProfileFn  func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	deleteFn         func(context.Context, uint) error
	listFn           func(context.Context, int, int) ([]models.User, error)
	searchFn         func(context.Context, string, int, int) ([]models.User, error)
	countsFn         func(context.Context, uint) (*models.Counts, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.updateProfileFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *userRepoStub) Counts(ctx context.Context, id uint) (*models.Counts, error) {
	return s.countsFn(ctx, id)
}

// noopUserRepo returns a stub where every user exists.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
	}
}

type messageRepoStub struct {
	createFn      func(context.Context, *models.Message) error
	getByIDFn     func(context.Context, uint) (*models.Message, error)
	listByUserFn  func(context.Context, uint, int, int) ([]models.Message, error)
	timelineFn    func(context.Context, uint, int) ([]models.Message, error)
	deleteOwnedFn func(context.Context, uint, uint) (bool, error)
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *messageRepoStub) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	return s.timelineFn(ctx, userID, limit)
}
func (s *messageRepoStub) DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error) {
	return s.deleteOwnedFn(ctx, id, ownerID)
}

type followRepoStub struct {
	createFn       func(context.Context, uint, uint) error
	deleteFn       func(context.Context, uint, uint) (bool, error)
	existsFn       func(context.Context, uint, uint) (bool, error)
	followersFn    func(context.Context, uint) ([]models.User, error)
	followingFn    func(context.Context, uint) ([]models.User, error)
	followerIDsFn  func(context.Context, uint) ([]uint, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}

type likeRepoStub struct {
	createFn          func(context.Context, uint, uint) error
	deleteFn          func(context.Context, uint, uint) (bool, error)
	existsFn          func(context.Context, uint, uint) (bool, error)
	messagesLikedByFn func(context.Context, uint) ([]models.Message, error)
	usersWhoLikedFn   func(context.Context, uint) ([]models.User, error)
}

func (s *likeRepoStub) Create(ctx context.Context, userID, messageID uint) error {
	return s.createFn(ctx, userID, messageID)
}
func (s *likeRepoStub) Delete(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.deleteFn(ctx, userID, messageID)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.existsFn(ctx, userID, messageID)
}
func (s *likeRepoStub) MessagesLikedBy(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.messagesLikedByFn(ctx, userID)
}
func (s *likeRepoStub) UsersWhoLiked(ctx context.Context, messageID uint) ([]models.User, error) {
	return s.usersWhoLikedFn(ctx, messageID)
}

// services wires every service over a fresh in-memory database.
type services struct {
	auth     *AuthService
	users    *UserService
	follows  *FollowService
	messages *MessageService
	likes    *LikeService
}

func newServices(t *testing.T) services {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db, nil)
	messageRepo := repository.NewMessageRepository(db, nil)
	followRepo := repository.NewFollowRepository(db, nil)
	likeRepo := repository.NewLikeRepository(db, nil)
	obs := Observer{}

	return services{
		auth:     NewAuthService(userRepo, bcrypt.MinCost, obs),
		users:    NewUserService(userRepo, obs),
		follows:  NewFollowService(userRepo, followRepo, obs),
		messages: NewMessageService(userRepo, messageRepo, 0, obs),
		likes:    NewLikeService(userRepo, messageRepo, likeRepo, obs),
	}
}

// signup registers username with password "password" and fails the test on error.
func (s services) signup(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := s.auth.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return user
}
