package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/account"
	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email (default <username>@example.com)")
	phone := flag.String("phone", "", "phone number, digits only (default generated)")
	name := flag.String("name", "", "display name (default username)")
	admin := flag.Bool("admin", false, "grant the administrator role")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/create_user [flags] <username> <password>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}

	db, err := database.FromEnv()
	if err != nil {
		logger.Fatalf("failed to open db: %v", err)
	}

	in := inputFor(flag.Arg(0), flag.Arg(1), *name, *email, *phone, *admin, time.Now())
	user, err := account.Create(db, in, "cli")
	if errors.Is(err, account.ErrUsernameTaken) {
		fmt.Printf("user %s already exists\n", in.Username)
		return
	}
	if err != nil {
		logger.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%s role=%s\n", user.Username, user.ID, in.Role)
}

func inputFor(username, password, name, email, phone string, admin bool, now time.Time) account.Input {
	if name == "" {
		name = username
	}
	if email == "" {
		email = username + "@example.com"
	}
	if phone == "" {
		phone = fmt.Sprintf("%011d", now.UnixNano()%100_000_000_000)
	}
	role := models.RoleUser
	if admin {
		role = models.RoleAdministrator
	}
	return account.Input{
		Username:    username,
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		Password:    password,
		Role:        role,
	}
}
