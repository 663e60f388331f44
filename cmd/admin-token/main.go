package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	pkgAuth "github.com/angelmondragon/capshop-backend/pkg/auth"
	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

// Mints a back-office JWT for the admin API.
func main() {
	logg := logger.New(logger.Options{ServiceName: "admin-token"})
	_ = godotenv.Load()

	email := flag.String("email", "", "operator email embedded in the token")
	role := flag.String("role", string(enums.MemberRoleAdmin), "member role: admin|staff")
	userID := flag.String("user-id", "", "operator uuid (random when empty)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}
	memberRole, err := enums.ParseMemberRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	id := uuid.New()
	if *userID != "" {
		id, err = uuid.Parse(*userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -user-id: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: id,
		Email:  *email,
		Role:   memberRole,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to mint token", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
