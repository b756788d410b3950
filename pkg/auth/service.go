// Package auth registers users, logs them in with bearer tokens and runs the
// password reset flow.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/mail"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const resetTokenTTL = 15 * time.Minute

type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id bson.ObjectID) error
	UpdateUserPassword(ctx context.Context, id bson.ObjectID, hash string, now time.Time) error
}

// ResetTokens stores hashed reset tokens with an expiry.
type ResetTokens interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Consume(ctx context.Context, tokenHash string) (string, error)
}

type Service struct {
	users        UserStore
	tokens       *Tokens
	resets       ResetTokens
	mailer       mail.Sender
	resetBaseURL string
	cost         int
	now          func() time.Time
}

func NewService(users UserStore, tokens *Tokens, resets ResetTokens, mailer mail.Sender, resetBaseURL string) *Service {
	if mailer == nil {
		mailer = mail.LogSender{}
	}
	return &Service{
		users:        users,
		tokens:       tokens,
		resets:       resets,
		mailer:       mailer,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, global.Conflict("User already exists")
	case !global.IsKind(err, global.KindNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       bson.NewObjectID(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     models.RoleCustomer,
	}
	user.SetTimestamps()
	if err := models.Validate(user); err != nil {
		return nil, global.InvalidArgument("user", err.Error())
	}

	if err := s.users.InsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns a signed token for valid credentials. Unknown email and wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	invalid := global.InvalidArgument("", "Invalid Email or Password")

	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if global.IsKind(err, global.KindNotFound) {
		return "", nil, invalid
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return "", nil, invalid
	}

	token, err := s.tokens.Issue(user, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// ForgotPassword issues a reset token valid for 15 minutes and mails the link.
// Only the SHA-256 of the token is stored.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if global.IsKind(err, global.KindNotFound) {
		return global.InvalidArgument("email", "Invalid Email")
	}
	if err != nil {
		return err
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.resets.Save(ctx, HashResetToken(token), user.ID.Hex(), resetTokenTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/%s", s.resetBaseURL, token)
	body := fmt.Sprintf("Hello %s,\n\nUse the link below within 15 minutes to reset your password:\n%s\n", user.Name, link)
	if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		log.Printf("Failed to send password reset mail to %s: %v", user.Email, err)
		return global.Upstream("send reset mail", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.resets.Consume(ctx, HashResetToken(token))
	if err != nil {
		return err
	}
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return global.InvalidArgument("token", "Token is invalid or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdateUserPassword(ctx, id, string(hash), s.now())
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return s.users.FindUserByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	return s.users.DeleteUser(ctx, id)
}

// Authenticate verifies a bearer token.
func (s *Service) Authenticate(raw string) (*Claims, error) {
	return s.tokens.Parse(raw)
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
