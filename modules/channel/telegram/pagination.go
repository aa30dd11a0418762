package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Paging actions encoded into callback data.
const (
	actionPrev = "prev"
	actionNext = "next"
)

// pageToken is the state carried by a pagination button. The wire format is
// "<action>_<page>-<contentID>", where page is the 1-based page currently
// shown. The token is the only state; the bridge keeps nothing in memory
// between button presses, so messages survive restarts.
type pageToken struct {
	Action    string
	Page      int
	ContentID string
}

// parsePageToken decodes callback data into a pageToken.
func parsePageToken(data string) (pageToken, error) {
	head, rest, ok := strings.Cut(data, "_")
	if !ok || (head != actionPrev && head != actionNext) {
		return pageToken{}, fmt.Errorf("telegram: unrecognized callback data %q", data)
	}
	pageStr, contentID, ok := strings.Cut(rest, "-")
	if !ok || contentID == "" {
		return pageToken{}, fmt.Errorf("telegram: malformed page token %q", data)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return pageToken{}, fmt.Errorf("telegram: bad page number in token %q", data)
	}
	return pageToken{Action: head, Page: page, ContentID: contentID}, nil
}

// String encodes the token back into callback data.
func (t pageToken) String() string {
	return fmt.Sprintf("%s_%d-%s", t.Action, t.Page, t.ContentID)
}

// pageKeyboard builds the navigation keyboard for the given page. Buttons
// only appear for directions that exist; a single-page document gets no
// keyboard at all.
func pageKeyboard(page, total int, contentID string) *InlineKeyboardMarkup {
	var row []InlineKeyboardButton
	if page > 1 {
		row = append(row, InlineKeyboardButton{
			Text:         "⬅️ Back",
			CallbackData: pageToken{Action: actionPrev, Page: page, ContentID: contentID}.String(),
		})
	}
	if page < total {
		row = append(row, InlineKeyboardButton{
			Text:         "Next ➡️",
			CallbackData: pageToken{Action: actionNext, Page: page, ContentID: contentID}.String(),
		})
	}
	if len(row) == 0 {
		return nil
	}
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}

// handleCallback turns a pagination button press into an editMessageMedia
// call replacing the shown page. The callback query is always answered,
// exactly once, so the client never shows a stuck loading indicator —
// including on parse errors and stale tokens.
func (d *Dispatcher) handleCallback(ctx context.Context, cq *CallbackQuery) error {
	defer func() {
		if err := d.client.AnswerCallbackQuery(ctx, AnswerCallbackQueryRequest{CallbackQueryID: cq.ID}); err != nil {
			d.logger.Warn("answering callback query failed", "error", err)
		}
	}()

	if d.renderer == nil {
		d.logger.Debug("callback ignored, no renderer configured", "data", cq.Data)
		return nil
	}
	if cq.Message == nil {
		return nil
	}

	tok, err := parsePageToken(cq.Data)
	if err != nil {
		return err
	}

	target := tok.Page
	switch tok.Action {
	case actionPrev:
		target--
	case actionNext:
		target++
	}

	total, err := d.renderer.PageCount(tok.ContentID)
	if err != nil {
		return fmt.Errorf("telegram: page count for %q: %w", tok.ContentID, err)
	}

	// The content may have changed since the keyboard was rendered; clamp
	// into the current range instead of failing.
	if target < 1 {
		target = 1
	}
	if target > total {
		target = total
	}
	if target == tok.Page {
		return nil
	}

	image, err := d.renderer.ResolvePage(tok.ContentID, target)
	if err != nil {
		return fmt.Errorf("telegram: resolve page %d of %q: %w", target, tok.ContentID, err)
	}

	_, err = d.client.EditMessageMedia(ctx, EditMessageMediaRequest{
		ChatID:      cq.Message.Chat.ID,
		MessageID:   cq.Message.MessageID,
		Photo:       image,
		ReplyMarkup: pageKeyboard(target, total, tok.ContentID),
	})
	if err != nil {
		return fmt.Errorf("telegram: edit page message: %w", err)
	}
	return nil
}
