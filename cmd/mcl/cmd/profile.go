package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Koora7334/minecraft-launcher-core/internal/download"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
)

var errNoSkin = errors.New("profile has no skin texture")

// profileIDPattern matches a UUID with its dashes already stripped.
var profileIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

var (
	// profileJSON switches lookup output to the raw profile document.
	profileJSON bool
	// profileOutput is the path the skin image is written to.
	profileOutput string

	// profileCmd groups the player profile operations.
	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Look up player profiles and download skins",
	}

	// profileLookupCmd resolves a player to their profile.
	profileLookupCmd = &cobra.Command{
		Use:   "lookup <name|uuid>",
		Short: "Look up a player profile by name or UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			profile, err := resolveProfile(ctx, newYggdrasilClient(), args[0])
			if err != nil {
				return err
			}

			if profileJSON {
				contents, err := json.MarshalIndent(profile, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal profile: %w", err)
				}

				fmt.Println(string(contents))

				return nil
			}

			fmt.Printf("%s %s\n", profile.ID, profile.Name)

			textures, err := profile.Textures()
			if err != nil {
				if errors.Is(err, yggdrasil.ErrNoTextures) {
					return nil
				}

				return err
			}

			if skin := textures.Textures.Skin; skin != nil {
				fmt.Printf("skin (%s): %s\n", skin.Model(), skin.URL)
			}

			if cape := textures.Textures.Cape; cape != nil {
				fmt.Printf("cape: %s\n", cape.URL)
			}

			return nil
		},
	}

	// profileSkinCmd downloads a player's skin image.
	profileSkinCmd = &cobra.Command{
		Use:   "skin <name|uuid>",
		Short: "Download a player's skin image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			profile, err := resolveProfile(ctx, newYggdrasilClient(), args[0])
			if err != nil {
				return err
			}

			textures, err := profile.Textures()
			if err != nil {
				return err
			}

			skin := textures.Textures.Skin
			if skin == nil {
				return fmt.Errorf("%s: %w", profile.Name, errNoSkin)
			}

			output := profileOutput
			if output == "" {
				output = profile.Name + ".png"
			}

			request := &download.Request{
				URLs:        []string{skin.URL},
				Destination: output,
			}

			if err = newDownloadClient().Download(ctx, request); err != nil {
				return err
			}

			logger.InfoKV(ctx, "skin downloaded",
				"player", profile.Name,
				"model", skin.Model(),
				"path", output,
			)

			return nil
		},
	}
)

// resolveProfile accepts either a player name or a UUID (with or
// without dashes) and returns the full profile with its properties.
func resolveProfile(
	ctx context.Context,
	client *yggdrasil.Client,
	query string,
) (*yggdrasil.GameProfile, error) {
	id := strings.ReplaceAll(query, "-", "")
	if !profileIDPattern.MatchString(id) {
		named, err := client.LookupProfileByName(ctx, query)
		if err != nil {
			return nil, err
		}

		id = named.ID
	}

	return client.LookupProfile(ctx, id)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	profileLookupCmd.Flags().BoolVar(&profileJSON, "json", false, "print the full profile as JSON")
	profileSkinCmd.Flags().StringVarP(&profileOutput, "output", "o", "",
		"path to write the skin image to (default <player>.png)")

	profileCmd.AddCommand(profileLookupCmd, profileSkinCmd)
}
