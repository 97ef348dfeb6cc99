package config

import "strings"

// AppVersion is the version of the application, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "WallpaperScenes"

// AppID is the fyne application identifier. Preferences are keyed on it.
const AppID = "com.doorhinge.wallpaperscenes"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// LibraryFileName is the name of the JSON document holding images and scenes.
const LibraryFileName = "library.json"

// ImagesSubDir is the folder, relative to the storage dir, imported images are copied into.
const ImagesSubDir = "images"
