package internal

import (
	"context"
	"errors"
)

var ErrNoProvider = errors.New("no LLM provider configured")

type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateObject(ctx context.Context, prompt string, target any) error
	Stream(ctx context.Context, prompt string) (<-chan string, error)
}

// TripPlan is the structured explanation generated for a ranked list.
type TripPlan struct {
	Headline   string   `json:"headline"`
	Overview   string   `json:"overview"`
	Highlights []string `json:"highlights"`
	Tips       []string `json:"tips"`
}
