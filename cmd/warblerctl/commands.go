package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/service"

	"gorm.io/gorm"
)

var errUsage = errors.New("invalid arguments")

type command struct {
	name  string
	usage string
	help  string
	nargs int
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = []command{
	{"signup", "<username> <email> <password> [image-url]", "create an account", 3, (*app).signup},
	{"login", "<username> <password>", "check credentials", 2, (*app).login},
	{"passwd", "<username> <current> <new>", "change a password", 3, (*app).passwd},
	{"follow", "<follower> <followed>", "follow a user", 2, (*app).follow},
	{"unfollow", "<follower> <followed>", "stop following a user", 2, (*app).unfollow},
	{"followers", "<username>", "list followers", 1, (*app).followers},
	{"following", "<username>", "list followed users", 1, (*app).following},
	{"post", "<username> <text...>", "post a message", 2, (*app).post},
	{"delete-message", "<message-id> <username>", "delete an owned message", 2, (*app).deleteMessage},
	{"timeline", "<username> [limit]", "show the home timeline", 1, (*app).timeline},
	{"like", "<username> <message-id>", "like a message", 2, (*app).like},
	{"unlike", "<username> <message-id>", "remove a like", 2, (*app).unlike},
	{"likes", "<username>", "list liked messages", 1, (*app).listLikes},
	{"users", "[query]", "list or search users", 0, (*app).searchUsers},
	{"delete-user", "<username>", "delete a user and their data", 1, (*app).deleteUser},
	{"stats", "<username>", "show profile counts", 1, (*app).stats},
}

type app struct {
	auth     *service.AuthService
	users    *service.UserService
	follows  *service.FollowService
	messages *service.MessageService
	likes    *service.LikeService
	out      io.Writer
}

func newApp(db *gorm.DB, c *cache.Cache, cfg *config.Config, out io.Writer, obs service.Observer) *app {
	userRepo := repository.NewUserRepository(db, c)
	messageRepo := repository.NewMessageRepository(db, c)
	followRepo := repository.NewFollowRepository(db, c)
	likeRepo := repository.NewLikeRepository(db, c)

	return &app{
		auth:     service.NewAuthService(userRepo, cfg.BcryptCost, obs),
		users:    service.NewUserService(userRepo, obs),
		follows:  service.NewFollowService(userRepo, followRepo, obs),
		messages: service.NewMessageService(userRepo, messageRepo, cfg.MessageMaxLength, obs),
		likes:    service.NewLikeService(userRepo, messageRepo, likeRepo, obs),
		out:      out,
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if len(args)-1 < c.nargs {
			return fmt.Errorf("%w: usage: warblerctl %s %s", errUsage, c.name, c.usage)
		}
		return c.run(a, ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) user(ctx context.Context, username string) (*models.User, error) {
	return a.users.GetByUsername(ctx, username)
}

func (a *app) userPair(ctx context.Context, first, second string) (*models.User, *models.User, error) {
	u1, err := a.user(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	u2, err := a.user(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	return u1, u2, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", errUsage, s)
	}
	return uint(id), nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	in := service.SignupInput{Username: args[0], Email: args[1], Password: args[2]}
	if len(args) > 3 {
		in.ImageURL = args[3]
	}
	user, err := a.auth.Signup(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	user, err := a.auth.Authenticate(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("invalid username or password")
	}
	fmt.Fprintf(a.out, "hello, %s!\n", user.Username)
	return nil
}

func (a *app) passwd(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.auth.ChangePassword(ctx, user.ID, args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "password changed")
	return nil
}

func (a *app) follow(ctx context.Context, args []string) error {
	follower, followed, err := a.userPair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.follows.Follow(ctx, follower.ID, followed.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s now follows %s\n", follower.Username, followed.Username)
	return nil
}

func (a *app) unfollow(ctx context.Context, args []string) error {
	follower, followed, err := a.userPair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	removed, err := a.follows.Unfollow(ctx, follower.ID, followed.ID)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.out, "%s was not following %s\n", follower.Username, followed.Username)
		return nil
	}
	fmt.Fprintf(a.out, "%s unfollowed %s\n", follower.Username, followed.Username)
	return nil
}

func (a *app) followers(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	users, err := a.follows.Followers(ctx, user.ID)
	if err != nil {
		return err
	}
	return a.printUsers(users)
}

func (a *app) following(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	users, err := a.follows.Following(ctx, user.ID)
	if err != nil {
		return err
	}
	return a.printUsers(users)
}

func (a *app) post(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	msg, err := a.messages.Post(ctx, user.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "posted message %d\n", msg.ID)
	return nil
}

func (a *app) deleteMessage(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	user, err := a.user(ctx, args[1])
	if err != nil {
		return err
	}
	if err := a.messages.Delete(ctx, id, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted message %d\n", id)
	return nil
}

func (a *app) timeline(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	limit := 0
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("%w: limit must be a number", errUsage)
		}
	}
	msgs, err := a.messages.Timeline(ctx, user.ID, limit)
	if err != nil {
		return err
	}
	return a.printMessages(msgs)
}

func (a *app) like(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := a.likes.Like(ctx, user.ID, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s likes message %d\n", user.Username, id)
	return nil
}

func (a *app) unlike(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	removed, err := a.likes.Unlike(ctx, user.ID, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.out, "%s had not liked message %d\n", user.Username, id)
		return nil
	}
	fmt.Fprintf(a.out, "%s no longer likes message %d\n", user.Username, id)
	return nil
}

func (a *app) listLikes(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	msgs, err := a.likes.LikesOf(ctx, user.ID)
	if err != nil {
		return err
	}
	return a.printMessages(msgs)
}

func (a *app) searchUsers(ctx context.Context, args []string) error {
	users, err := a.users.SearchUsers(ctx, strings.Join(args, " "), 0, 0)
	if err != nil {
		return err
	}
	return a.printUsers(users)
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.users.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted user %s\n", user.Username)
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	user, err := a.user(ctx, args[0])
	if err != nil {
		return err
	}
	counts, err := a.follows.FollowCounts(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "messages %d\nfollowers %d\nfollowing %d\nlikes %d\n",
		counts.Messages, counts.Followers, counts.Following, counts.Likes)
	return nil
}

func (a *app) printUsers(users []models.User) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tLOCATION")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Location)
	}
	return w.Flush()
}

func (a *app) printMessages(msgs []models.Message) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tWHEN\tTEXT")
	for _, m := range msgs {
		author := ""
		if m.User != nil {
			author = m.User.Username
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, author, m.Timestamp.Format("2006-01-02 15:04"), m.Text)
	}
	return w.Flush()
}
