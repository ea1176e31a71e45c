package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/foldertree/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree"`
	Walk WalkConfiguration `mapstructure:"walk"`
}

// BuildConfiguration defines how a folder is constructed. It is shared by the
// tree and walk commands.
type BuildConfiguration struct {
	Parallel         *bool              `mapstructure:"parallel"`
	Concurrency      *int               `mapstructure:"concurrency"`
	EnumerationBatch *int               `mapstructure:"enumeration_batch"`
	Verbose          *bool              `mapstructure:"verbose"`
	IncludeContent   *bool              `mapstructure:"content"`
	Metrics          *bool              `mapstructure:"metrics"`
	Tokens           TokenConfiguration `mapstructure:"tokens"`
	Paths            PathConfiguration  `mapstructure:"paths"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	BuildConfiguration `mapstructure:",squash"`
	Format             string `mapstructure:"format"`
	Summary            *bool  `mapstructure:"summary"`
	Copy               *bool  `mapstructure:"copy"`
}

// WalkConfiguration defines defaults for the walk command.
type WalkConfiguration struct {
	BuildConfiguration `mapstructure:",squash"`
	Format             string `mapstructure:"format"`
	Mode               string `mapstructure:"mode"`
	Parallelism        *int   `mapstructure:"parallelism"`
	Workers            *int   `mapstructure:"workers"`
	Copy               *bool  `mapstructure:"copy"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// PathConfiguration configures inclusion and exclusion rules for path traversal.
type PathConfiguration struct {
	Exclude       []string `mapstructure:"exclude"`
	UseGitignore  *bool    `mapstructure:"use_gitignore"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore"`
	IncludeGit    *bool    `mapstructure:"include_git"`
}

// IgnoreOptions resolves the path configuration into ignore loading options.
// Ignore files are honored unless explicitly disabled.
func (config PathConfiguration) IgnoreOptions() IgnoreOptions {
	return IgnoreOptions{
		ExclusionPatterns: config.Exclude,
		UseGitignore:      boolOrDefault(config.UseGitignore, true),
		UseIgnoreFile:     boolOrDefault(config.UseIgnoreFile, true),
		IncludeGit:        boolOrDefault(config.IncludeGit, false),
	}
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Tree.Paths.Exclude = utils.DeduplicatePatterns(merged.Tree.Paths.Exclude)
	merged.Walk.Paths.Exclude = utils.DeduplicatePatterns(merged.Walk.Paths.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Tree = result.Tree.merge(override.Tree)
	result.Walk = result.Walk.merge(override.Walk)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	result.BuildConfiguration = result.BuildConfiguration.merge(override.BuildConfiguration)
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

func (config WalkConfiguration) merge(override WalkConfiguration) WalkConfiguration {
	result := config
	result.BuildConfiguration = result.BuildConfiguration.merge(override.BuildConfiguration)
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Parallelism != nil {
		result.Parallelism = cloneInt(override.Parallelism)
	}
	if override.Workers != nil {
		result.Workers = cloneInt(override.Workers)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

func (config BuildConfiguration) merge(override BuildConfiguration) BuildConfiguration {
	result := config
	if override.Parallel != nil {
		result.Parallel = cloneBool(override.Parallel)
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	if override.EnumerationBatch != nil {
		result.EnumerationBatch = cloneInt(override.EnumerationBatch)
	}
	if override.Verbose != nil {
		result.Verbose = cloneBool(override.Verbose)
	}
	if override.IncludeContent != nil {
		result.IncludeContent = cloneBool(override.IncludeContent)
	}
	if override.Metrics != nil {
		result.Metrics = cloneBool(override.Metrics)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.IncludeGit != nil {
		result.IncludeGit = cloneBool(override.IncludeGit)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func boolOrDefault(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}
