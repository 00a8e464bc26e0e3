package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/requestdata"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, updates map[string]interface{}) (*types.User, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	user, err := us.currentUser(ctx, nil)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (us *userService) UpdateProfile(ctx context.Context, updates map[string]interface{}) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	allowed := map[string]bool{
		"full_name": true, "username": true, "degree_program": true,
		"current_year": true, "current_semester": true, "career_goal": true,
	}
	filtered := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if allowed[k] {
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
			}
			filtered[k] = v
		}
	}

	var result *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := us.currentUser(ctx, tx)
		if err != nil {
			return err
		}
		if len(filtered) > 0 {
			filtered["updated_at"] = time.Now()
			if err := us.userRepo.Update(ctx, tx, user.ID, filtered); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}
		result, err = us.currentUser(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
	if us.avatarService == nil {
		return nil, fmt.Errorf("%w: avatar uploads are not configured", ErrInvalidState)
	}

	var result *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := us.currentUser(ctx, tx)
		if err != nil {
			return err
		}
		if err := us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, tx, user, raw); err != nil {
			return fmt.Errorf("upload avatar image: %w", err)
		}
		if err := us.userRepo.Update(ctx, tx, user.ID, map[string]interface{}{
			"avatar_bucket_key": user.AvatarBucketKey,
			"avatar_url":        user.AvatarURL,
			"updated_at":        time.Now(),
		}); err != nil {
			return fmt.Errorf("persist avatar fields: %w", err)
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (us *userService) currentUser(ctx context.Context, tx *gorm.DB) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		us.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context")
	}
	if rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id not set in request data")
	}
	users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, rd.UserID)
	}
	return users[0], nil
}
