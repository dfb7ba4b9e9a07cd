package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// UserSettings represents the user's personal settings
type UserSettings struct {
	DownloadLocation string `json:"downloadLocation"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tubegrab-settings.json")
}

// getUserDownloadLocation loads the user's preferred download location from settings file
func getUserDownloadLocation() string {
	settingsPath := SettingsFilePath()

	// If file doesn't exist, return empty string to fall back to env vars
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return ""
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return ""
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return ""
	}

	return settings.DownloadLocation
}

// GetDownloadLocation resolves the directory downloads are written to.
// Precedence: settings file, then environment, then an OS-appropriate default.
func GetDownloadLocation() string {
	if userPath := getUserDownloadLocation(); userPath != "" {
		return userPath
	}

	if customPath := os.Getenv("TUBEGRAB_DOWNLOADS"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if can't get home dir
		return filepath.Join(".", "downloads")
	}

	return filepath.Join(homeDir, "Downloads", "TubeGrab")
}

// GetMaxConcurrentDownloads returns the configured cap on simultaneous
// transfers. Zero means unbounded, which is the default.
func GetMaxConcurrentDownloads() int {
	v := os.Getenv("TUBEGRAB_MAX_CONCURRENT")
	if v == "" {
		return 0
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
