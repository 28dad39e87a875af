package yggdrasil

import (
	"crypto/md5" //nolint:gosec // Offline UUIDs are Minecraft's published md5 derivation, not security material.
	"encoding/hex"
)

const offlinePlayerPrefix = "OfflinePlayer:"

// OfflineUUID derives the stable offline-mode UUID for a player name:
// the md5 of "OfflinePlayer:<name>" with the version set to 3 and the
// RFC 4122 variant bits applied, rendered dashless. Every launcher and
// server derives the same value, so offline profiles stay consistent
// across machines.
func OfflineUUID(name string) string {
	digest := md5.Sum([]byte(offlinePlayerPrefix + name)) //nolint:gosec // See the import note.
	digest[6] = digest[6]&0x0f | 0x30
	digest[8] = digest[8]&0x3f | 0x80

	return hex.EncodeToString(digest[:])
}

// OfflineSession fabricates a session for offline play. The tokens are
// random and no online service will accept them.
func OfflineSession(name string) *Session {
	profile := GameProfile{ID: OfflineUUID(name), Name: name}

	return &Session{
		AccessToken:       NewClientToken(),
		ClientToken:       NewClientToken(),
		SelectedProfile:   profile,
		AvailableProfiles: []GameProfile{profile},
		User:              &User{ID: profile.ID, Username: name},
	}
}
