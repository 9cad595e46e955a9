package cms

import "github.com/goliatone/go-gitcontent/internal/runtimeconfig"

var (
	ErrSourceProviderUnknown   = runtimeconfig.ErrSourceProviderUnknown
	ErrSourceRepositoryMissing = runtimeconfig.ErrSourceRepositoryMissing
	ErrSourceAPIBaseURLInvalid = runtimeconfig.ErrSourceAPIBaseURLInvalid
	ErrSourceLocalRootMissing  = runtimeconfig.ErrSourceLocalRootMissing
	ErrCollectionsRequired     = runtimeconfig.ErrCollectionsRequired
	ErrCollectionInvalid       = runtimeconfig.ErrCollectionInvalid
	ErrCollectionDuplicate     = runtimeconfig.ErrCollectionDuplicate
	ErrUploadsPathInvalid      = runtimeconfig.ErrUploadsPathInvalid
	ErrRefreshIntervalInvalid  = runtimeconfig.ErrRefreshIntervalInvalid
	ErrWatchRequiresLocal      = runtimeconfig.ErrWatchRequiresLocal
	ErrOutputPathRequired      = runtimeconfig.ErrOutputPathRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	SourceConfig     = runtimeconfig.SourceConfig
	CollectionConfig = runtimeconfig.CollectionConfig
	MediaConfig      = runtimeconfig.MediaConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	RefreshConfig    = runtimeconfig.RefreshConfig
	FetchConfig      = runtimeconfig.FetchConfig
	ServerConfig     = runtimeconfig.ServerConfig
	OutputConfig     = runtimeconfig.OutputConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

const (
	ProviderGitHub     = runtimeconfig.ProviderGitHub
	ProviderLocal      = runtimeconfig.ProviderLocal
	KindPosts          = runtimeconfig.KindPosts
	KindImages         = runtimeconfig.KindImages
	DefaultUploadsPath = runtimeconfig.DefaultUploadsPath
)

// DefaultConfig returns the baseline configuration: a GitHub source with a
// posts and an images collection refreshed every thirty seconds.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
