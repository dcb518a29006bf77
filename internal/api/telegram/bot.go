// Package telegram Telegram-интерфейс диагностики: меню, фото, справочник.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/container"
	"leaf-doctor/internal/domain/entity"
)

const (
	downloadTimeout = 30 * time.Second
	maxDownload     = 20 << 20 // предел Telegram Bot API на скачивание
)

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *app.UserService
	diagnosis *app.DiagnosisService
	diseases  *app.DiseaseService
	imagesDir string
	client    *http.Client
	logger    *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, imagesDir string, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	logger.Info("Telegram bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:       api,
		users:     c.UserService,
		diagnosis: c.DiagnosisService,
		diseases:  c.DiseaseService,
		imagesDir: imagesDir,
		client:    &http.Client{Timeout: downloadTimeout},
		logger:    logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("Failed to get user", "user_id", msg.From.ID, "error", err)
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		// Последний размер самый крупный
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, user, photo.FileID, "photo.jpg")
	case isImageDocument(msg.Document):
		b.handleImage(ctx, msg, user, msg.Document.FileID, msg.Document.FileName)
	case msg.Document != nil:
		b.sendMessage(msg.Chat.ID, msgUnsupportedImage)
	default:
		if page, ok := pageFromText(msg.Text); ok {
			b.openPage(ctx, msg, page)
			return
		}
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.openPage(ctx, msg, entity.PageWelcome)
	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)
	case "diagnose":
		b.openPage(ctx, msg, entity.PageDiagnosis)
	case "diseases":
		b.openPage(ctx, msg, entity.PageDiseases)
	case "cancel":
		if _, err := b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			b.logger.Error("Failed to cancel", "user_id", msg.From.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)
	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// openPage переключает пользователя на страницу меню и показывает её.
func (b *Bot) openPage(ctx context.Context, msg *tgbotapi.Message, page entity.Page) {
	if _, err := b.users.Navigate(ctx, msg.From.ID, msg.Chat.ID, page); err != nil {
		b.logger.Error("Failed to switch page", "user_id", msg.From.ID, "page", page, "error", err)
	}

	switch page {
	case entity.PageDiagnosis:
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)
	case entity.PageDiseases:
		b.sendDiseases(msg.Chat.ID)
	default:
		b.sendMessage(msg.Chat.ID, msgStart)
	}
}

// handleImage скачивает изображение и отправляет его на диагностику.
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID, filename string) {
	if user.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgAlreadyBusy)
		return
	}

	if _, err := b.users.BeginProcessing(ctx, user.ID, user.ChatID); err != nil {
		b.logger.Error("Failed to update state", "user_id", user.ID, "error", err)
	}
	defer func() {
		if _, err := b.users.FinishProcessing(ctx, user.ID, user.ChatID); err != nil {
			b.logger.Error("Failed to update state", "user_id", user.ID, "error", err)
		}
	}()

	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("Failed to download photo", "user_id", user.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	d, err := b.diagnosis.Diagnose(ctx, app.DiagnosisInput{
		Data:     imageData,
		Filename: filename,
		Source:   entity.SourceUpload,
	})
	if err != nil {
		b.logger.Warn("Diagnosis failed", "user_id", user.ID, "error", err)
		b.sendMessage(msg.Chat.ID, errorMessage(err))
		return
	}

	if d.Disease != nil {
		b.sendImage(msg.Chat.ID, d.Disease.Image, "Gambar: "+d.Disease.Label)
	}
	b.sendMessage(msg.Chat.ID, formatDiagnosis(d))
}

// sendDiseases отправляет справочник: по сообщению на болезнь.
func (b *Bot) sendDiseases(chatID int64) {
	list := b.diseases.List()
	if len(list) == 0 {
		b.sendMessage(chatID, msgNoDiseases)
		return
	}

	b.sendMessage(chatID, msgDiseasesHeader)
	for _, d := range list {
		text := formatDisease(d)
		if !b.sendImage(chatID, d.Image, caption(text)) {
			b.sendMessage(chatID, text)
		}
	}
}

// sendImage отправляет эталонное фото, если оно есть на диске.
func (b *Bot) sendImage(chatID int64, name, text string) bool {
	if name == "" {
		return false
	}
	path := filepath.Join(b.imagesDir, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		b.logger.Debug("Reference image missing", "path", path)
		return false
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = text
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("Failed to send photo", "chat_id", chatID, "error", err)
		return false
	}
	return true
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение с клавиатурой меню
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = menuKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}
