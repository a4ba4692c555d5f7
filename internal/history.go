package internal

import (
	"context"
	"errors"
	"time"
)

var ErrNothingToCommit = errors.New("nothing to commit")

type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
	Parents   []string
}

func (c *Commit) ShortHash() string {
	if len(c.Hash) < 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

type HistoryRepository interface {
	Commit(ctx context.Context, message string) (*Commit, error)
	Log(ctx context.Context, limit int) ([]*Commit, error)
	Diff(ctx context.Context, ref string) (string, error)
}
