package history

import (
	"context"

	"chatsync/pkg/models"
	"chatsync/pkg/utils"
)

// LoopbackSender is the default send boundary: it assigns an authoritative
// ID and writes the message straight into the archive. It stands in for the
// real transport, which is an external collaborator; deployments wire a
// gateway-backed Sender here instead.
type LoopbackSender struct{}

func (LoopbackSender) Send(ctx context.Context, chatID, body string, media *models.MediaRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := utils.GenMessageID()
	m := models.Message{
		ID:     id,
		ChatID: chatID,
		Dir:    models.DirectionOut,
		TS:     nowMillis(),
		Body:   body,
		Media:  media,
		Ack:    models.AckSent,
	}
	if err := SaveMessage(m); err != nil {
		return "", err
	}
	return id, nil
}
