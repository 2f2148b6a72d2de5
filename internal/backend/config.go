package backend

import (
	"fmt"

	"spotcheck/internal/config"
)

// FromAppConfig converts the application config to store config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		RESTBaseURL: appConfig.RemoteBaseURL,
		RESTAPIKey:  appConfig.RemoteAPIKey,
		RESTToken:   appConfig.RemoteAccessToken,
	}, nil
}
