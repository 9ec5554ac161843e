package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultSessionDBName  = "session.db"
	appDirName            = "chronos"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Ask       string `toml:"ask"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	PrevDay   string `toml:"prev_day"`
	NextDay   string `toml:"next_day"`
	PrevMonth string `toml:"prev_month"`
	NextMonth string `toml:"next_month"`
	Today     string `toml:"today"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Edit      string `toml:"edit"`
	Subtasks  string `toml:"subtasks"`
	Refresh   string `toml:"refresh"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Config struct {
	BaseURL       string `toml:"base_url"`
	AIEndpoint    string `toml:"ai_endpoint"`
	SessionDBPath string `toml:"session_db_path"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns the config file location under the user config
// directory, falling back to the working directory.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = defaultSessionDBPath()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultConfig().BaseURL
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultSessionDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultSessionDBName
	}
	return filepath.Join(dir, appDirName, DefaultSessionDBName)
}

func defaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:3000/api",
		AIEndpoint:    "http://localhost:3000/api/ai/parse",
		SessionDBPath: defaultSessionDBPath(),
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Ask:       "i",
			Up:        "k",
			Down:      "j",
			PrevDay:   "h",
			NextDay:   "l",
			PrevMonth: "[",
			NextMonth: "]",
			Today:     "t",
			Toggle:    " ",
			Delete:    "d",
			Edit:      "e",
			Subtasks:  "s",
			Refresh:   "r",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
