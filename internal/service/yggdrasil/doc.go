// Package yggdrasil implements the Mojang account protocol of the same
// name: password authentication with refreshable access tokens, session
// validation and teardown, and player profile lookups including skin
// and cape textures.
//
// All endpoints default to the official Mojang hosts and can be
// repointed at compatible third-party services through client options.
// Offline-mode helpers derive the deterministic offline UUID without
// touching the network.
package yggdrasil
