package cli

// MsgRootLong is the long description of the root command
const MsgRootLong = `pkgman reads package groups from an INI file, filters them against an
ignore file and the packages already on the system, and installs what is left
through the configured package-manager backend (pacman, paru, ...).

Each group lists packages to install and optional shell commands to run once
they are installed.`

// Command descriptions
const (
	MsgRootShort       = "Install package groups through your package manager"
	MsgInstallShort    = "Install package groups"
	MsgPlanShort       = "Show what install would do"
	MsgGroupsShort     = "List the package groups"
	MsgIgnoreShort     = "Show the parsed ignore file"
	MsgUpdateShort     = "Upgrade the whole system"
	MsgCleanShort      = "Clean the package cache"
	MsgOrphansShort    = "Remove orphaned packages"
	MsgConfigShort     = "Inspect or create the configuration file"
	MsgConfigShowShort = "Print the effective configuration"
	MsgConfigInitShort = "Write a commented configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"
)

// Status messages
const (
	MsgDryRunNotice     = "DRY RUN MODE - No changes were made"
	MsgNothingToInstall = "Everything is up to date, there is nothing to do"
	MsgNoOrphans        = "No orphaned packages"
	MsgRemovedOrphans   = "Removed"
	MsgOrphans          = "Orphaned packages"
	MsgConfigWritten    = "Configuration written to %s"
	MsgUpdated          = "System updated"
	MsgCacheCleaned     = "Package cache cleaned"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG)"
	MsgFlagDryRun   = "Preview changes without executing them"
	MsgFlagConfig   = "Configuration file (default $XDG_CONFIG_HOME/pkgman/config.toml)"
	MsgFlagBackend  = "Backend to use, overriding the configuration"
	MsgFlagPackages = "Package-group file (default $XDG_CONFIG_HOME/pkgman/packages.ini)"
	MsgFlagIgnore   = "Ignore file (default $XDG_CONFIG_HOME/pkgman/.pkgignore)"
	MsgFlagFormat   = "Output format: auto, term, text, json, yaml or toml"
	MsgFlagForce    = "Overwrite an existing file"
	MsgFlagList     = "Only list orphaned packages"
)
