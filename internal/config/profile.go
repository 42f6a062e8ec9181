package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/patungan/internal/models"
)

// Profile is the client configuration kept in ~/.patungan/config.toml.
type Profile struct {
	Identity models.Identity `toml:"identity"`
	Server   ServerProfile   `toml:"server"`
	Drafts   DraftProfile    `toml:"drafts"`
	Sync     SyncProfile     `toml:"sync"`
}

// ServerProfile locates the remote store. An empty URL means offline.
type ServerProfile struct {
	URL string `toml:"url"`
}

// DraftProfile selects where local drafts live. When RedisURL is set it is
// used instead of Dir.
type DraftProfile struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	RedisTTL string `toml:"redis_ttl"`
}

// SyncProfile tunes the remote write debounce.
type SyncProfile struct {
	Debounce string `toml:"debounce"`
}

// DefaultDir returns ~/.patungan.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".patungan"
	}
	return filepath.Join(home, ".patungan")
}

// DefaultProfile returns the profile used before setup.
func DefaultProfile(dir string) Profile {
	return Profile{
		Drafts: DraftProfile{Dir: filepath.Join(dir, "drafts"), RedisTTL: "720h"},
		Sync:   SyncProfile{Debounce: "500ms"},
	}
}

// ProfilePath returns the config file inside dir.
func ProfilePath(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// LoadProfile reads the profile in dir. A missing file yields the default
// profile.
func LoadProfile(dir string) (Profile, error) {
	p := DefaultProfile(dir)
	_, err := toml.DecodeFile(ProfilePath(dir), &p)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

// SaveProfile writes the profile into dir.
func SaveProfile(dir string, p Profile) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), ProfilePath(dir)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// DebounceWindow parses the sync debounce, falling back to 500ms.
func (p Profile) DebounceWindow() time.Duration {
	return parseDuration(p.Sync.Debounce, "500ms")
}

// DraftTTL parses the Redis draft expiry, falling back to 30 days.
func (p Profile) DraftTTL() time.Duration {
	return parseDuration(p.Drafts.RedisTTL, "720h")
}
