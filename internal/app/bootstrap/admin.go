// internal/app/bootstrap/admin.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	profilestore "github.com/dalemusser/studyplanet/internal/app/store/profiles"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/txn"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminSpec describes the admin account to ensure.
type AdminSpec struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureAdmin creates an approved Admin user with an empty profile unless a
// user with spec.Email already exists, in which case nothing changes (the
// existing user's role is left alone). It reports whether it created one.
func EnsureAdmin(ctx context.Context, db *mongo.Database, spec AdminSpec, logger *zap.Logger) (bool, error) {
	spec.Email = strings.TrimSpace(spec.Email)
	if spec.Email == "" || spec.Password == "" {
		return false, errors.New("admin email and password are required")
	}
	if spec.FirstName == "" {
		spec.FirstName = "Admin"
	}
	if spec.LastName == "" {
		spec.LastName = "User"
	}

	users := userstore.New(db)
	if _, err := users.GetByEmail(ctx, spec.Email); err == nil {
		logger.Info("admin already exists", zap.String("email", spec.Email))
		return false, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	profiles := profilestore.New(db)
	err = txn.Run(ctx, db, logger, func(ctx context.Context) error {
		p, err := profiles.Create(ctx, models.Profile{About: "Admin account"})
		if err != nil {
			return fmt.Errorf("create admin profile: %w", err)
		}
		_, err = users.Create(ctx, models.User{
			FirstName:    spec.FirstName,
			LastName:     spec.LastName,
			Email:        spec.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Approved:     true,
			Active:       true,
			ProfileID:    &p.ID,
		})
		return err
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// lost a race with another creator
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
