package app

import (
	"fmt"
	"os"

	"chatsync/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.ArchivePath == "" {
		return fmt.Errorf("archive path is empty: set --archive flag, CHATSYNC_ARCHIVE_PATH env, or server.archive_path in config")
	}

	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if eff.Config.Avatars.Endpoint == "" && (eff.Config.Avatars.RPS > 0 || eff.Config.Avatars.Burst > 0) {
		return fmt.Errorf("avatars.rps/burst set but avatars.endpoint is empty")
	}

	if eff.Config.Session.PageSize < 0 || eff.Config.Session.QueueCapacity < 0 {
		return fmt.Errorf("session.page_size and session.queue_capacity must be non-negative")
	}

	return nil
}
