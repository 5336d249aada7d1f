package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
	"dormdrop/pkg/logger"
)

const (
	verificationCodeTTL = 15 * time.Minute
	resetTokenTTL       = time.Hour
)

type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenGenerator
	mailer   service.Mailer
	limiter  Limiter
}

func NewAuthUseCase(userRepo repository.UserRepository, tokens TokenGenerator, mailer service.Mailer, limiter Limiter) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		limiter:  limiter,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// collegeFromEmail derives the campus identifier from a school address.
// Everyone on the same mail domain shares one marketplace.
func collegeFromEmail(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "", errors.BadRequest("Invalid email address", nil)
	}
	domain := strings.ToLower(email[at+1:])
	if !strings.HasSuffix(domain, ".edu") {
		return "", errors.BadRequest("A .edu email address is required", nil)
	}
	return domain, nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	college, err := collegeFromEmail(email)
	if err != nil {
		return nil, err
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		College:      college,
		PasswordHash: string(hash),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.sendVerificationCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) sendVerificationCode(ctx context.Context, user *entity.User) error {
	code, err := generateVerificationCode()
	if err != nil {
		return errors.Internal("Failed to generate verification code", err)
	}
	if err := uc.userRepo.SetVerificationCode(ctx, user.ID, code, time.Now().Add(verificationCodeTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in 15 minutes.", user.FirstName, code)
	if err := uc.mailer.Send(ctx, user.Email, "Verify your email", body); err != nil {
		logger.Error("Failed to send verification email to %s: %v", user.Email, err)
	}
	return nil
}

func (uc *AuthUseCase) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.BadRequest("Invalid verification code", nil)
	}
	// An already-verified account must never mint a session here: the
	// email alone is not a credential. Login is the only way in.
	if user.EmailVerified {
		return nil, errors.BadRequest("Email is already verified", nil)
	}

	stored, expiresAt, err := uc.userRepo.GetVerificationCode(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != code || time.Now().After(expiresAt) {
		return nil, errors.BadRequest("Invalid verification code", nil)
	}

	if err := uc.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.EmailVerified = true
	return uc.issueToken(user)
}

func (uc *AuthUseCase) ResendVerification(ctx context.Context, email string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address is registered.
		return nil
	}
	if user.EmailVerified {
		return nil
	}

	if allowed, wait := uc.limiter.Allow(user.ID, "resend_verification"); !allowed {
		return errors.TooManyRequests("Please wait before requesting another code", wait)
	}
	return uc.sendVerificationCode(ctx, user)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}
	if !user.EmailVerified {
		return nil, errors.Forbidden("Email not verified", nil)
	}
	return uc.issueToken(user)
}

func (uc *AuthUseCase) issueToken(user *entity.User) (*AuthResult, error) {
	token, err := uc.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, errors.Internal("Failed to generate token", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ForgotPassword always reports success so the endpoint cannot be used
// to probe which addresses are registered.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}

	if allowed, _ := uc.limiter.Allow(user.ID, "password_reset"); !allowed {
		return nil
	}

	token := uuid.New().String()
	if err := uc.userRepo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		logger.Error("Failed to store reset token for %s: %v", user.ID, err)
		return nil
	}

	body := fmt.Sprintf("Hi %s,\n\nUse this code to reset your password: %s\n\nIt expires in one hour.", user.FirstName, token)
	if err := uc.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		logger.Error("Failed to send reset email to %s: %v", user.Email, err)
	}
	return nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := uc.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return errors.BadRequest("Invalid or expired reset token", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal("Failed to hash password", err)
	}
	return uc.userRepo.UpdatePassword(ctx, user.ID, string(hash))
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
