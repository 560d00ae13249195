package model

// VersionInfo contains version and schema information for the application.
type VersionInfo struct {
	AppVersion      string `json:"appVersion"`
	DbVersion       int64  `json:"dbVersion"`
	DbDriver        string `json:"dbDriver"`
	MigrationNeeded bool   `json:"migrationNeeded"`
}
