package api

import (
	"errors"
	"fmt"

	"chatsync/pkg/config"
	"chatsync/pkg/models"
)

const (
	defaultMaxSendBodyLen = 64 * 1024
	defaultMaxPushBody    = 256 * 1024
)

// Limits holds the request validation tunables. Zero values take defaults.
type Limits struct {
	MaxSendBodyLen int
	MaxPushBody    int64
}

func limitsFromConfig(cfg *config.Config) Limits {
	l := Limits{
		MaxSendBodyLen: defaultMaxSendBodyLen,
		MaxPushBody:    defaultMaxPushBody,
	}
	if cfg == nil {
		return l
	}
	if cfg.Security.MaxSendBodyLen > 0 {
		l.MaxSendBodyLen = cfg.Security.MaxSendBodyLen
	}
	if cfg.Security.MaxPushBody.Int64() > 0 {
		l.MaxPushBody = cfg.Security.MaxPushBody.Int64()
	}
	return l
}

// validateSend checks a send request. A message must carry text or media;
// an empty body with an attachment is valid.
func (l Limits) validateSend(body string, media *models.MediaRef) error {
	if body == "" && media == nil {
		return errors.New("body or media is required")
	}
	if len(body) > l.MaxSendBodyLen {
		return fmt.Errorf("body exceeds %d bytes", l.MaxSendBodyLen)
	}
	if media != nil {
		if media.Kind == "" {
			return errors.New("media kind is required")
		}
		if media.URL == "" {
			return errors.New("media url is required")
		}
	}
	return nil
}
