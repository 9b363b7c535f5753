package kv

import "context"

// Prefixed namespaces every key of an underlying repository.
type Prefixed struct {
	repo   Repository
	prefix string
}

// WithPrefix returns a repository that stores key under prefix+":"+key.
func WithPrefix(repo Repository, prefix string) *Prefixed {
	return &Prefixed{repo: repo, prefix: prefix + ":"}
}

func (p *Prefixed) Load(ctx context.Context, key string, dst any) error {
	return p.repo.Load(ctx, p.prefix+key, dst)
}

func (p *Prefixed) Save(ctx context.Context, key string, value any) error {
	return p.repo.Save(ctx, p.prefix+key, value)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.repo.Delete(ctx, p.prefix+key)
}

var _ Repository = (*Prefixed)(nil)
