package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/pricing"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/types"
)

var ErrInsufficientTokens = errors.New("insufficient tokens")

// TokenCheck is the outcome of an affordability check for one action.
type TokenCheck struct {
	OK        bool   `json:"ok"`
	Available int    `json:"available"`
	Required  int    `json:"required"`
	Plan      string `json:"plan"`
	Message   string `json:"message,omitempty"`
}

// TokenService tracks the monthly token allowance. Every billable action
// is checked against the user's remaining balance and recorded in the
// token_usage ledger when deducted.
type TokenService interface {
	Check(ctx context.Context, userID uuid.UUID, action string) (*TokenCheck, error)
	Deduct(ctx context.Context, userID uuid.UUID, action string, projectID *uuid.UUID, metadata map[string]any) (*TokenCheck, error)
}

type tokenService struct {
	db        *gorm.DB
	userRepo  repos.UserRepo
	usageRepo repos.TokenUsageRepo
	log       *logger.Logger
}

func NewTokenService(db *gorm.DB, userRepo repos.UserRepo, usageRepo repos.TokenUsageRepo, log *logger.Logger) TokenService {
	return &tokenService{
		db:        db,
		userRepo:  userRepo,
		usageRepo: usageRepo,
		log:       log.With("service", "TokenService"),
	}
}

func availableTokens(user *types.User) int {
	planCfg := pricing.GetPlan(user.Plan)
	available := planCfg.MonthlyTokens + user.RolloverTokens - user.TokensUsed
	if available < 0 {
		available = 0
	}
	return available
}

func (ts *tokenService) check(user *types.User, action string) *TokenCheck {
	required := pricing.ActionCost(action)
	available := availableTokens(user)
	result := &TokenCheck{
		OK:        available >= required,
		Available: available,
		Required:  required,
		Plan:      user.Plan,
	}
	if !result.OK {
		result.Message = fmt.Sprintf("Insufficient tokens. This action requires %d tokens but you have %d available.", required, available)
	}
	return result
}

func (ts *tokenService) Check(ctx context.Context, userID uuid.UUID, action string) (*TokenCheck, error) {
	if !pricing.IsKnownAction(action) {
		return nil, fmt.Errorf("unknown action: %s", action)
	}
	user, err := ts.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return ts.check(user, action), nil
}

// Deduct re-checks the balance inside a transaction so two concurrent
// actions cannot both spend the last tokens, then appends a ledger row
// and bumps the user's counter.
func (ts *tokenService) Deduct(ctx context.Context, userID uuid.UUID, action string, projectID *uuid.UUID, metadata map[string]any) (*TokenCheck, error) {
	if !pricing.IsKnownAction(action) {
		return nil, fmt.Errorf("unknown action: %s", action)
	}

	var result *TokenCheck
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ts.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		result = ts.check(user, action)
		if !result.OK {
			return ErrInsufficientTokens
		}

		usage := &types.TokenUsage{
			UserID:    userID,
			ProjectID: projectID,
			Action:    action,
			Tokens:    result.Required,
		}
		if len(metadata) > 0 {
			raw, err := json.Marshal(metadata)
			if err != nil {
				return fmt.Errorf("failed to encode usage metadata: %w", err)
			}
			usage.Metadata = datatypes.JSON(raw)
		}
		if _, err := ts.usageRepo.Create(ctx, tx, usage); err != nil {
			return err
		}

		user.TokensUsed += result.Required
		if err := ts.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		result.Available -= result.Required
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) {
			return result, err
		}
		ts.log.Error("Token deduction failed", "user_id", userID, "action", action, "error", err)
		return nil, err
	}

	ts.log.Info("Tokens deducted", "user_id", userID, "action", action, "tokens", result.Required, "remaining", result.Available)
	return result, nil
}
