package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

type statusRow struct {
	Status     string
	Count      int64
	PriceTotal money.Amount
	CoinTotal  money.Amount
}

type summary struct {
	Month  string
	UserID string
	Start  time.Time
	End    time.Time
	Rows   []statusRow
}

// monthBounds returns the UTC half-open interval of month (YYYY-MM).
func monthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

func lookupUserID(db *gorm.DB, username string) (string, error) {
	var user models.User
	if err := db.Select("id").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %q not found", username)
		}
		return "", err
	}
	return user.ID, nil
}

// monthly groups the month's topups by status. userID may be empty.
func monthly(db *gorm.DB, month, userID string) (summary, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return summary{}, err
	}
	q := `SELECT status, COUNT(*) AS count, COALESCE(SUM(price),0) AS price_total, COALESCE(SUM(coin_amount),0) AS coin_total
FROM user_topup_transactions WHERE created_at >= ? AND created_at < ?`
	args := []interface{}{start, end}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	q += ` GROUP BY status ORDER BY status`

	s := summary{Month: month, UserID: userID, Start: start, End: end}
	if err := db.Raw(q, args...).Scan(&s.Rows).Error; err != nil {
		return summary{}, fmt.Errorf("query failed: %w", err)
	}
	return s, nil
}

func listMonth(db *gorm.DB, s summary) ([]models.TopupTransaction, error) {
	q := db.Where("created_at >= ? AND created_at < ?", s.Start, s.End)
	if s.UserID != "" {
		q = q.Where("user_id = ?", s.UserID)
	}
	var rows []models.TopupTransaction
	err := q.Omit("image").Order("created_at").Find(&rows).Error
	return rows, err
}

func printSummary(w io.Writer, s summary) {
	who := "all users"
	if s.UserID != "" {
		who = "user_id=" + s.UserID
	}
	fmt.Fprintf(w, "Topup report for %s month=%s (UTC):\n", who, s.Month)
	total, price := int64(0), money.Zero
	for _, r := range s.Rows {
		fmt.Fprintf(w, "  %-8s count=%d price_total=%s coin_total=%s\n", r.Status, r.Count, r.PriceTotal, r.CoinTotal)
		total += r.Count
		price = price.Add(r.PriceTotal)
	}
	fmt.Fprintf(w, "  %-8s count=%d price_total=%s\n", "all", total, price)
}

func printRows(w io.Writer, rows []models.TopupTransaction) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s|%s|%s|%s|%s|%s\n", r.ID, r.CreatedBy, r.Status, r.CoinAmount, r.Price, r.CreatedAt.Format(time.RFC3339))
	}
}
