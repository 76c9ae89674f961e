package main

import (
	"context"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
	"github.com/TurnIfCode/backend-gogo/pkg/proofocr"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
)

type proofReader interface {
	Read(ctx context.Context, encoded string) (proofocr.Result, error)
}

type approver interface {
	Approve(ctx context.Context, actor topup.Actor, id string) (models.TopupTransaction, error)
}

type outcome struct {
	ID       string
	User     string
	Price    money.Amount
	Detected money.Amount
	Raw      string
	Match    bool
	Approved bool
	Err      error
}

// review reads every proof and, when approve is non-nil, approves the
// topups whose detected amount matches the price exactly.
func review(ctx context.Context, rows []models.TopupTransaction, reader proofReader, approve approver, actor topup.Actor, limit int) []outcome {
	var out []outcome
	for _, t := range rows {
		if t.Image == nil || *t.Image == "" {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		o := outcome{ID: t.ID, User: t.CreatedBy, Price: t.Price}
		res, err := reader.Read(ctx, *t.Image)
		if err != nil {
			o.Err = err
			out = append(out, o)
			continue
		}
		o.Detected, o.Raw = res.Amount, res.Raw
		o.Match = proofocr.Matches(res.Amount, t.Price)
		if o.Match && approve != nil {
			if _, err := approve.Approve(ctx, actor, t.ID); err != nil {
				o.Err = err
			} else {
				o.Approved = true
			}
		}
		out = append(out, o)
	}
	return out
}
