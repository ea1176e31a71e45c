package utils

const (
	// ConfigFileName is the name of the configuration file read from the working and global directories.
	ConfigFileName = ".foldertree.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".foldertree"

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command failures.
	ApplicationExecutionFailedMessage = "foldertree failed"
)
