package bootstrap

import "strings"

// LauncherSetup returns the launcher's global Setup.ini written on first
// run. VersionArgumentIndie=1 keeps .minecraft as the game directory, which
// is where packwiz installs content.
func LauncherSetup(displayName string) string {
	lines := []string{
		"; ===== " + displayName + " =====",
		"Logo=" + displayName,
		"LogoSub=Launcher",
		"VersionArgumentIndie=1",
		"LaunchArgumentWindowWidth=1280",
		"LaunchArgumentWindowHeight=720",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}
