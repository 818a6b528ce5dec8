// Command setup-super-admin provisions the first SUPER_ADMIN account. It is
// the only legitimate creation path for that role: the runtime API can
// neither grant nor revoke SUPER_ADMIN. The command refuses to run when a
// SUPER_ADMIN already exists.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/infrastructure/config"
	"github.com/accesskeeper/identity-system/internal/infrastructure/crypto"
	mongodb "github.com/accesskeeper/identity-system/internal/infrastructure/db/mongo"
	"github.com/accesskeeper/identity-system/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "setup-super-admin"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	users := mongodb.NewUserRepository(db)
	hasher := crypto.NewArgon2Hasher(crypto.DefaultParams)

	user, err := createSuperAdmin(ctx, users, hasher, bufio.NewReader(os.Stdin))
	if err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}

	log.Info().Str("id", user.ID).Str("email", user.Email).Msg("SUPER_ADMIN created")
}

// userCreator is the slice of the repository the setup flow needs.
type userCreator interface {
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
}

func createSuperAdmin(ctx context.Context, users userCreator, hasher passwordHasher, in *bufio.Reader) (*domain.User, error) {
	_, err := users.FindFirstByRole(ctx, domain.RoleSuperAdmin)
	if err == nil {
		return nil, domain.ErrSuperAdminExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	email, err := prompt(in, "Super Admin email: ")
	if err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%q is not a valid email", email)
	}

	password, err := prompt(in, "Password: ")
	if err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
