package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phpvm/phpvm/internal/config"
	"github.com/phpvm/phpvm/internal/resolver"
)

// ResolveService answers "which version does this directory want",
// combining the project walk with the configured default.
type ResolveService struct {
	brew     Brew
	settings config.Settings
}

// NewResolveService creates a resolve service.
func NewResolveService(brewClient Brew, settings config.Settings) *ResolveService {
	return &ResolveService{brew: brewClient, settings: settings}
}

// SourceDefault marks a result that came from the configured default
// version rather than a project file.
const SourceDefault resolver.Source = "config default"

// Execute resolves the version for dir. When no project source matches and
// a default version is configured, the default wins; otherwise the
// resolver's not-found error propagates.
func (s *ResolveService) Execute(ctx context.Context, dir string) (*resolver.Result, error) {
	installed, err := s.brew.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed versions: %w", err)
	}

	res, err := resolver.New(installed).Resolve(dir)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, resolver.ErrNotFound) && s.settings.DefaultVersion != "" {
		return &resolver.Result{
			Version: s.settings.DefaultVersion,
			Source:  SourceDefault,
		}, nil
	}
	return nil, err
}
