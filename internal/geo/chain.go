package geo

import (
	"context"
	"strings"
)

type Chain struct {
	list []Source
}

// NewChain：按顺序尝试，首个非空结果胜出；nil 数据源被跳过
func NewChain(list ...Source) *Chain {
	var ss []Source
	for _, s := range list {
		if s != nil {
			ss = append(ss, s)
		}
	}
	return &Chain{list: ss}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.list))
	for _, s := range c.list {
		names = append(names, s.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Len() int { return len(c.list) }

func (c *Chain) Lookup(ctx context.Context, ip string) (Result, error) {
	lastErr := ErrNotFound
	for _, s := range c.list {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		r, err := s.Lookup(ctx, ip)
		if err != nil {
			lastErr = err
			continue
		}
		if !r.Empty() {
			return r, nil
		}
	}
	return Result{}, lastErr
}
