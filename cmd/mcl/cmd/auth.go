package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
	"github.com/Koora7334/minecraft-launcher-core/internal/repository/session"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
)

var (
	errNoStoredSession = errors.New(`no stored session, run "mcl auth login" first`)
	errSessionInvalid  = errors.New("stored session is no longer valid")
)

var (
	// authPassword is the account password for non-interactive logins.
	authPassword string

	// authCmd groups the Yggdrasil account operations.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Log in to a Minecraft account and manage the stored session",
	}

	// authLoginCmd authenticates and persists the session.
	authLoginCmd = &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate with username and password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var username string
			if len(args) > 0 {
				username = args[0]
			}

			credentials, err := collectCredentials(username)
			if err != nil {
				return err
			}

			repository := newSessionRepository()

			// Reuse the client token of a previous session so the
			// service treats this as the same launcher installation.
			if existing, loadErr := repository.Load(ctx); loadErr == nil {
				credentials.ClientToken = existing.ClientToken
			}

			loggedIn, err := newYggdrasilClient().Login(ctx, *credentials)
			if err != nil {
				return err
			}

			if err = repository.Save(ctx, loggedIn); err != nil {
				return err
			}

			logger.InfoKV(ctx, "logged in",
				"player", loggedIn.SelectedProfile.Name,
				"uuid", loggedIn.SelectedProfile.ID,
			)

			return nil
		},
	}

	// authRefreshCmd trades the stored access token for a fresh one.
	authRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			repository := newSessionRepository()

			stored, err := loadStoredSession(ctx, repository)
			if err != nil {
				return err
			}

			refreshed, err := newYggdrasilClient().Refresh(ctx, stored)
			if err != nil {
				return err
			}

			if err = repository.Save(ctx, refreshed); err != nil {
				return err
			}

			logger.InfoKV(ctx, "session refreshed",
				"player", refreshed.SelectedProfile.Name,
			)

			return nil
		},
	}

	// authValidateCmd checks whether the stored session is still usable.
	authValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check whether the stored session is still valid",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			stored, err := loadStoredSession(ctx, newSessionRepository())
			if err != nil {
				return err
			}

			valid, err := newYggdrasilClient().Validate(ctx, stored)
			if err != nil {
				return err
			}

			if !valid {
				return errSessionInvalid
			}

			logger.InfoKV(ctx, "session is valid",
				"player", stored.SelectedProfile.Name,
			)

			return nil
		},
	}

	// authLogoutCmd invalidates the stored session and removes it.
	authLogoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the stored session and remove it",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			repository := newSessionRepository()

			stored, err := repository.Load(ctx)

			switch {
			case errors.Is(err, session.ErrNotFound):
				logger.Info(ctx, "no stored session")
				return nil
			case err != nil:
				return err
			}

			// The local session is cleared even when the service
			// cannot be reached.
			if err = newYggdrasilClient().Invalidate(ctx, stored); err != nil {
				logger.WarnKV(ctx, "invalidate session", "error", err.Error())
			}

			if err = repository.Clear(ctx); err != nil {
				return err
			}

			logger.Info(ctx, "logged out")

			return nil
		},
	}

	// authOfflineCmd creates an offline session for a player name.
	authOfflineCmd = &cobra.Command{
		Use:   "offline <name>",
		Short: "Create and store an offline session for a player name",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			offline := yggdrasil.OfflineSession(args[0])

			if err := newSessionRepository().Save(ctx, offline); err != nil {
				return err
			}

			fmt.Println(offline.SelectedProfile.ID)

			logger.InfoKV(ctx, "offline session saved",
				"player", args[0],
			)

			return nil
		},
	}
)

// collectCredentials fills in the username and password, prompting for
// whatever was not given on the command line.
func collectCredentials(username string) (*yggdrasil.Credentials, error) {
	if username == "" {
		prompt := &survey.Input{Message: "Username (email):"}
		if err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required)); err != nil {
			return nil, fmt.Errorf("read username: %w", err)
		}
	}

	password := authPassword
	if password == "" {
		prompt := &survey.Password{Message: "Password:"}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
	}

	return &yggdrasil.Credentials{
		Username:    username,
		Password:    password,
		RequestUser: true,
	}, nil
}

// loadStoredSession loads the persisted session, translating a missing
// file into a friendlier error.
func loadStoredSession(ctx context.Context, repository session.Repository) (*yggdrasil.Session, error) {
	stored, err := repository.Load(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil, errNoStoredSession
	}

	return stored, err
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	authLoginCmd.Flags().StringVarP(&authPassword, "password", "p", "",
		"account password (prompted for when omitted)")

	authCmd.AddCommand(authLoginCmd, authRefreshCmd, authValidateCmd, authLogoutCmd, authOfflineCmd)
}
