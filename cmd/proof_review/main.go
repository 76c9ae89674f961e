package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/account"
	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/pkg/proofocr"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
	"github.com/TurnIfCode/backend-gogo/store"
)

func main() {
	doApprove := flag.Bool("approve", false, "approve topups whose detected amount matches the price")
	adminName := flag.String("admin", "admin", "administrator username recorded as approver")
	limit := flag.Int("limit", 0, "review at most N proofs (0 = all)")
	flag.Parse()

	db, err := database.FromEnv()
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	topups := store.NewTopupStore(db)
	rows, err := topups.ListByStatus(ctx, topup.Proses)
	if err != nil {
		logger.Fatalf("list topups: %v", err)
	}

	var (
		approve approver
		actor   topup.Actor
	)
	if *doApprove {
		actor, err = adminActor(db, *adminName)
		if err != nil {
			logger.Fatalf("approver: %v", err)
		}
		approve = topup.NewService(topups, store.NewCatalogStore(db), nil, topup.Options{})
	}

	outcomes := review(ctx, rows, proofocr.NewReader(), approve, actor, *limit)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tPRICE\tDETECTED\tMATCH\tAPPROVED\tNOTE")
	for _, o := range outcomes {
		note := o.Raw
		if o.Err != nil {
			note = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\t%s\n", o.ID, o.User, o.Price, o.Detected, o.Match, o.Approved, note)
	}
	_ = tw.Flush()
}

func adminActor(db *gorm.DB, username string) (topup.Actor, error) {
	var user models.User
	if err := db.Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return topup.Actor{}, account.ErrUserNotFound
		}
		return topup.Actor{}, err
	}
	actor := topup.Actor{ID: user.ID, Username: user.Username, Role: account.RoleName(user)}
	if !actor.IsAdmin() {
		return topup.Actor{}, fmt.Errorf("%s is not an administrator", username)
	}
	return actor, nil
}
