package javaruntime

// DefaultIndexURL is Mojang's published catalogue of Java runtime builds.
const DefaultIndexURL = "https://launchermeta.mojang.com/v1/products/java-runtime/" +
	"2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"

// Runtime channels, as the index names them.
const (
	ChannelJRELegacy = "jre-legacy"
	ChannelAlpha     = "java-runtime-alpha"
	ChannelBeta      = "java-runtime-beta"
	ChannelGamma     = "java-runtime-gamma"
	ChannelJavaExe   = "minecraft-java-exe"
)

// DefaultChannel is used when the caller does not request a specific one.
const DefaultChannel = ChannelBeta

// Index is the top-level runtime catalogue, keyed by platform bucket
// (for example "windows-x64" or "mac-os").
type Index map[string]PlatformRuntimes

// PlatformRuntimes maps a channel name to its available builds, newest
// and most suitable first.
type PlatformRuntimes map[string][]Target

// Target identifies one concrete runtime build inside the index.
type Target struct {
	// Availability describes the staged rollout of the build.
	Availability Availability `json:"availability"`
	// Manifest points at the per-build file listing.
	Manifest ManifestRef `json:"manifest"`
	// Version names the build.
	Version Version `json:"version"`
}

// Availability describes the staged rollout of a build.
type Availability struct {
	Group    int `json:"group"`
	Progress int `json:"progress"`
}

// ManifestRef locates a manifest document and pins its content.
type ManifestRef struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Version names a runtime build.
type Version struct {
	Name     string `json:"name"`
	Released string `json:"released"`
}

// Manifest is the full file tree of one runtime build.
type Manifest struct {
	// Target is the channel the manifest was resolved for.
	Target string `json:"target"`
	// Version names the build the files belong to.
	Version Version `json:"version"`
	// Files maps runtime-relative paths to their entries. Paths are
	// unique keys; entries carry no ordering relationship.
	Files map[string]Entry `json:"files"`
}

// EntryType discriminates the kinds of manifest entries.
type EntryType string

// Known entry types.
const (
	EntryTypeFile      EntryType = "file"
	EntryTypeDirectory EntryType = "directory"
	EntryTypeLink      EntryType = "link"
)

// Entry is one node of the runtime file tree: a file to download, a
// directory to create or a link to lay down.
type Entry struct {
	// Type selects which of the remaining fields are meaningful.
	Type EntryType `json:"type"`
	// Executable marks files that need the executable bit.
	Executable bool `json:"executable,omitempty"`
	// Downloads carries the file content descriptors. Only file
	// entries have it.
	Downloads *FileDownloads `json:"downloads,omitempty"`
	// Target is the link destination, relative to the directory the
	// link itself lives in. Only link entries have it.
	Target string `json:"target,omitempty"`
}

// FileDownloads holds the available encodings of a file's content.
type FileDownloads struct {
	// Raw is the file as it must end up on disk.
	Raw *Descriptor `json:"raw,omitempty"`
	// LZMA is an optional compressed variant of the same content.
	LZMA *Descriptor `json:"lzma,omitempty"`
}

// Descriptor pins one downloadable blob.
type Descriptor struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}
