package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/requestdata"
	"github.com/slivora/slivora-backend/internal/utils"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnknownUser  = errors.New("unknown user")
)

// AuthService validates bearer tokens and stamps the authenticated
// identity onto the request context.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	userRepo  repos.UserRepo
	jwtSecret []byte
	log       *logger.Logger
}

func NewAuthService(userRepo repos.UserRepo, log *logger.Logger) AuthService {
	serviceLog := log.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET", "", log)
	if secret == "" {
		serviceLog.Warn("JWT_SECRET is empty, all tokens will be rejected")
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(secret),
		log:       serviceLog,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if len(as.jwtSecret) == 0 {
		return ctx, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ctx, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ctx, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, ErrInvalidToken
	}

	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		as.log.Warn("Token subject does not match a user", "user_id", userID, "error", err)
		return ctx, ErrUnknownUser
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Plan:        user.Plan,
	}), nil
}
