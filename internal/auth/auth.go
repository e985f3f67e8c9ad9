package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// APIKeyEnvVar holds the Gemini API key.
	APIKeyEnvVar = "GEMINI_API_KEY"
	// PassphraseFileEnvVar names a file holding the passphrase for the
	// encrypted credentials, for unattended runs.
	PassphraseFileEnvVar = "SMART_GALLERY_GPG_PASSPHRASE_FILE"

	stateDir        = ".smart-gallery"
	credentialsFile = "credentials.gpg"
	passphraseFile  = "gpg-passphrase"
)

// errNoCredentials means the encrypted credentials file does not exist.
var errNoCredentials = errors.New("no encrypted credentials file")

// APIKey returns the Gemini API key. The environment wins; otherwise the key
// is decrypted with gpg from ~/.smart-gallery/credentials.gpg. A missing key
// is reported as ErrTypeNoKey so callers can suggest the heuristic tagger.
func APIKey(ctx context.Context) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		log.Debug().Str("source", "env").Msg("Gemini API key found")
		return key, nil
	}

	credPath, err := credentialsPath()
	if err == nil {
		var key string
		key, err = decryptKey(ctx, credPath)
		if err == nil && key != "" {
			log.Debug().Str("source", credPath).Msg("Gemini API key found")
			return key, nil
		}
		if err == nil {
			err = fmt.Errorf("%s decrypted to an empty key", credPath)
		}
	}

	if !errors.Is(err, errNoCredentials) {
		log.Warn().Err(err).Msg("Could not read encrypted Gemini API key")
	}
	return "", &ValidationError{
		Type: ErrTypeNoKey,
		Message: fmt.Sprintf("no Gemini API key: set %s, store it gpg-encrypted at %s, or run with --tagger heuristic",
			APIKeyEnvVar, filepath.Join("~", stateDir, credentialsFile)),
		Err: err,
	}
}

// credentialsPath returns ~/.smart-gallery/credentials.gpg.
func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, stateDir, credentialsFile), nil
}

func decryptKey(ctx context.Context, credPath string) (string, error) {
	if _, err := os.Stat(credPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w at %s", errNoCredentials, credPath)
		}
		return "", err
	}

	args := []string{"--decrypt", "--quiet", "--batch"}
	if pass := passphrasePath(); pass != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", pass)
	}
	args = append(args, credPath)

	out, err := exec.CommandContext(ctx, "gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("gpg decrypt %s: %s", credPath, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gpg decrypt %s: %w", credPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// passphrasePath picks the first usable passphrase file: the one named by
// SMART_GALLERY_GPG_PASSPHRASE_FILE, then ~/.smart-gallery/gpg-passphrase,
// then .gpg-passphrase in the working directory. Files readable by group or
// others are skipped. Empty means gpg prompts on its own.
func passphrasePath() string {
	var candidates []string
	if p := os.Getenv(PassphraseFileEnvVar); p != "" {
		candidates = append(candidates, p)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, stateDir, passphraseFile))
	}
	candidates = append(candidates, ".gpg-passphrase")

	for _, p := range candidates {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if perm := fi.Mode().Perm(); perm&0o077 != 0 {
			log.Warn().
				Str("passphrase_file", p).
				Str("permissions", fmt.Sprintf("%04o", perm)).
				Msg("Ignoring passphrase file readable by others; chmod 600 it")
			continue
		}
		return p
	}
	return ""
}
