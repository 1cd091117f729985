package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "A Homebrew-backed PHP version switcher"
	MsgUseShort       = "Switch the active PHP version"
	MsgInstallShort   = "Install a PHP version via Homebrew"
	MsgUninstallShort = "Uninstall a PHP version via Homebrew"
	MsgListShort      = "List installed PHP versions"
	MsgCurrentShort   = "Show the active PHP version"
	MsgResolveShort   = "Show the PHP version a directory wants"
	MsgRestartShort   = "Restart php-fpm for the active version"
	MsgConfigShort    = "Inspect or change phpvm settings"
	MsgCacheShort     = "Manage the available-versions cache"
	MsgSetupShort     = "Install the phpvm shell integration"
	MsgHookShort      = "Emit the auto-switch script for a directory"

	// Status messages
	MsgSwitched       = "Now using %s"
	MsgReloadHint     = "Open a new shell or run: source %s"
	MsgFPMRestarted   = "php-fpm restarted"
	MsgInstalled      = "%s installed"
	MsgUninstalled    = "%s uninstalled"
	MsgNoVersions     = "No PHP versions installed. Try: phpvm install 8.4"
	MsgCacheRefreshed = "Version cache refreshed"
	MsgCacheCleared   = "Version cache cleared"
	MsgSetupDone      = "Shell integration written to %s"

	// Error hints
	MsgHintInstall = "install it with: phpvm install %s"
)
