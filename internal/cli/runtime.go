package cli

import (
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/commitzapp/commitz/internal/localstore"
	"github.com/commitzapp/commitz/internal/logger"
	"github.com/commitzapp/commitz/internal/remote"
	"github.com/google/uuid"
)

// runtime wires the client stack for one command invocation.
type runtime struct {
	config Config
	local  *localstore.Store
	remote *remote.Client
	logger *charmlog.Logger
	userID string
}

func newRuntime(opts *RootOptions) (*runtime, error) {
	config, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	local, err := localstore.Open(config.DataPath)
	if err != nil {
		return nil, err
	}

	fileLogger, err := logger.New(config.LogPath, opts.Verbose)
	if err != nil {
		return nil, err
	}

	userID := config.UserID
	if userID == "" {
		userID = local.UserID()
	}
	if userID == "" {
		userID = uuid.NewString()
		fileLogger.Info("generated user id", "userId", userID)
	}
	if local.UserID() != userID {
		if err := local.SetUserID(userID); err != nil {
			return nil, fmt.Errorf("persist user id: %w", err)
		}
	}

	return &runtime{
		config: config,
		local:  local,
		remote: remote.NewClient(config.ServerURL),
		logger: fileLogger,
		userID: userID,
	}, nil
}
