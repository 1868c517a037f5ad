package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./hearify.db" {
			t.Errorf("expected database path ./hearify.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Crawler.PlaylistID != "37i9dQZEVXbMDoHDwVN2tF" {
			t.Errorf("expected Top 50 Global playlist, got %s", config.Crawler.PlaylistID)
		}

		if config.Crawler.MaxTracks != 500 {
			t.Errorf("expected max tracks 500, got %d", config.Crawler.MaxTracks)
		}

		if config.Crawler.Delay().Seconds() != 1 {
			t.Errorf("expected 1s delay, got %v", config.Crawler.Delay())
		}

		if config.Server.SessionSecret != "your_secret_key" {
			t.Errorf("expected default session secret, got %s", config.Server.SessionSecret)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[credentials.genius]
access_token = "genius_token"

[crawler]
max_tracks = 25
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Genius.AccessToken != "genius_token" {
			t.Errorf("expected genius token, got %s", config.Credentials.Genius.AccessToken)
		}

		if config.Crawler.MaxTracks != 25 {
			t.Errorf("expected max tracks 25, got %d", config.Crawler.MaxTracks)
		}

		if config.Crawler.PlaylistID != "37i9dQZEVXbMDoHDwVN2tF" {
			t.Errorf("expected default playlist to survive partial config, got %s", config.Crawler.PlaylistID)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			EnvSpotifyClientID:     "env_id",
			EnvSpotifyClientSecret: "env_secret",
			EnvGeniusToken:         "  env_token  ",
			EnvSessionSecret:       "",
		}

		config.ApplyEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		})

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Genius.AccessToken != "env_token" {
			t.Errorf("expected trimmed env_token, got %q", config.Credentials.Genius.AccessToken)
		}
		if config.Server.SessionSecret != "your_secret_key" {
			t.Errorf("empty env value should not override secret, got %s", config.Server.SessionSecret)
		}
	})

	t.Run("LoadEnvFile", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("HEARIFY_TEST_VALUE=from_dotenv\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("HEARIFY_TEST_VALUE") })

		if err := LoadEnvFile(envPath); err != nil {
			t.Fatalf("failed to load env file: %v", err)
		}
		if got := os.Getenv("HEARIFY_TEST_VALUE"); got != "from_dotenv" {
			t.Errorf("expected from_dotenv, got %q", got)
		}

		if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("missing env file should be ignored, got %v", err)
		}
	})

	t.Run("RequireCrawlerCredentials", func(t *testing.T) {
		config := DefaultConfig()

		err := config.RequireCrawlerCredentials()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		for _, key := range []string{EnvSpotifyClientID, EnvSpotifyClientSecret, EnvGeniusToken} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected error to name %s, got %v", key, err)
			}
		}

		config.Credentials.Spotify = SpotifyConfig{ClientID: "id", ClientSecret: "secret"}
		config.Credentials.Genius.AccessToken = "token"
		if err := config.RequireCrawlerCredentials(); err != nil {
			t.Errorf("expected no error with all credentials, got %v", err)
		}
	})
}
