// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// User-facing strings. The bot speaks Russian to its learners.
const (
	greetingReply    = "✨ Давай вместе изучать корейский язык!"
	helpReply        = "Задай вопрос о корейском языке текстом, голосом или картинкой.\n\n/clear_history - начать разговор заново"
	clearedReply     = "История очищена"
	waitReply        = "Пожалуйста, подождите..."
	errorReply       = "❌ Произошла ошибка, попробуйте позже"
	unavailableReply = "Ошибка подключения, попробуйте позже"
)

// pollTimeout is the Telegram long-poll timeout in seconds.
const pollTimeout = 30

// Backend is the tutor API surface the bot needs.
type Backend interface {
	SendText(ctx context.Context, userID, question string, image []byte) (string, error)
	SendAudio(ctx context.Context, userID string, audio, image []byte) (string, error)
	ClearHistory(ctx context.Context, userID string) error
}

// Bot bridges Telegram updates to the tutor backend.
//
// # Thread Safety
//
// Safe for concurrent use; each update is handled in its own goroutine.
type Bot struct {
	api        *tgbotapi.BotAPI
	backend    Backend
	downloader *http.Client
}

// New creates a bot for the given Telegram token.
func New(token string, backend Backend) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("Telegram bot token is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	slog.Info("Telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		backend:    backend,
		downloader: &http.Client{Timeout: requestTimeout},
	}, nil
}

// Run polls Telegram for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)
	slog.Info("Bot polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage dispatches one incoming Telegram message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.Chat.ID, 10)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, userID)
		return
	}

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, msg, userID)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg, userID)
	case msg.Text != "":
		b.handleText(ctx, msg, userID)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, userID string) {
	switch msg.Command() {
	case "start":
		b.replyPlain(msg.Chat.ID, greetingReply)
	case "help":
		b.replyPlain(msg.Chat.ID, helpReply)
	case "clear_history":
		if err := b.backend.ClearHistory(ctx, userID); err != nil {
			slog.Error("Failed to clear history", "user_id", userID, "error", err)
			b.replyFailure(msg.Chat.ID, err)
			return
		}
		b.replyPlain(msg.Chat.ID, clearedReply)
	default:
		b.replyPlain(msg.Chat.ID, helpReply)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message, userID string) {
	answer, err := b.backend.SendText(ctx, userID, msg.Text, nil)
	if err != nil {
		slog.Error("Text turn failed", "user_id", userID, "error", err)
		b.replyFailure(msg.Chat.ID, err)
		return
	}
	b.replyHTML(msg.Chat.ID, answer)
}

// handlePhoto sends the largest photo rendition with its caption.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, userID string) {
	largest := msg.Photo[len(msg.Photo)-1]
	image, err := b.download(ctx, largest.FileID)
	if err != nil {
		slog.Error("Photo download failed", "user_id", userID, "error", err)
		b.replyPlain(msg.Chat.ID, errorReply)
		return
	}

	answer, err := b.backend.SendText(ctx, userID, msg.Caption, image)
	if err != nil {
		slog.Error("Photo turn failed", "user_id", userID, "error", err)
		b.replyFailure(msg.Chat.ID, err)
		return
	}
	b.replyHTML(msg.Chat.ID, answer)
}

// handleVoice acknowledges first; transcription makes voice turns slow.
func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message, userID string) {
	b.replyPlain(msg.Chat.ID, waitReply)

	audio, err := b.download(ctx, msg.Voice.FileID)
	if err != nil {
		slog.Error("Voice download failed", "user_id", userID, "error", err)
		b.replyPlain(msg.Chat.ID, errorReply)
		return
	}

	answer, err := b.backend.SendAudio(ctx, userID, audio, nil)
	if err != nil {
		slog.Error("Voice turn failed", "user_id", userID, "error", err)
		b.replyFailure(msg.Chat.ID, err)
		return
	}
	b.replyHTML(msg.Chat.ID, answer)
}

// download fetches a Telegram file by id.
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// replyHTML sends a rendered answer, falling back to plain text if
// Telegram rejects the HTML.
func (b *Bot) replyHTML(chatID int64, answer string) {
	reply := tgbotapi.NewMessage(chatID, ToTelegramHTML(answer))
	reply.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(reply); err != nil {
		slog.Warn("HTML reply rejected, retrying as plain text", "error", err)
		b.replyPlain(chatID, answer)
	}
}

func (b *Bot) replyPlain(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Failed to send Telegram message", "chat_id", chatID, "error", err)
	}
}

// replyFailure picks the user-facing string for a backend error.
func (b *Bot) replyFailure(chatID int64, err error) {
	if errors.Is(err, ErrUnavailable) {
		b.replyPlain(chatID, unavailableReply)
		return
	}
	b.replyPlain(chatID, errorReply)
}
