package telegram

import (
	"context"
	"errors"
	"fmt"
)

// SendText delivers a text message to every configured chat. Delivery is
// best effort per chat: one failing chat does not block the others, and the
// joined error reports each failure.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range t.config.Chats {
		_, err := t.client.SendMessage(ctx, SendMessageRequest{
			ChatID:              chatID,
			Text:                text,
			ParseMode:           "HTML",
			DisableNotification: t.config.SilentMessages,
		})
		if err != nil {
			t.metrics.SendErrors.Inc()
			t.logger.Error("send failed", "chat_id", chatID, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// SendPhoto delivers a photo with a caption to every configured chat.
func (t *Telegram) SendPhoto(ctx context.Context, image []byte, caption string) error {
	var errs []error
	for _, chatID := range t.config.Chats {
		_, err := t.client.SendPhoto(ctx, SendPhotoRequest{
			ChatID:              chatID,
			Photo:               image,
			Caption:             caption,
			DisableNotification: t.config.SilentMessages,
		})
		if err != nil {
			t.metrics.SendErrors.Inc()
			t.logger.Error("photo send failed", "chat_id", chatID, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// SendPaged posts the first page of a rendered document with a pagination
// keyboard when more pages exist. Subsequent navigation happens entirely
// through callback queries; no per-message state is kept.
func (t *Telegram) SendPaged(ctx context.Context, contentID, caption string) error {
	if t.renderer == nil {
		return errors.New("telegram: no renderer configured")
	}

	total, err := t.renderer.PageCount(contentID)
	if err != nil {
		return fmt.Errorf("telegram: page count for %q: %w", contentID, err)
	}
	if total < 1 {
		return fmt.Errorf("telegram: no pages rendered for %q", contentID)
	}

	image, err := t.renderer.ResolvePage(contentID, 1)
	if err != nil {
		return fmt.Errorf("telegram: resolve first page of %q: %w", contentID, err)
	}

	var errs []error
	for _, chatID := range t.config.Chats {
		_, err := t.client.SendPhoto(ctx, SendPhotoRequest{
			ChatID:              chatID,
			Photo:               image,
			Caption:             caption,
			DisableNotification: t.config.SilentMessages,
			ReplyMarkup:         pageKeyboard(1, total, contentID),
		})
		if err != nil {
			t.metrics.SendErrors.Inc()
			t.logger.Error("paged send failed", "chat_id", chatID, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
