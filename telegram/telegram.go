package telegram

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"wardrobeapi/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// AdminNotifier posts operational events to the admin chat.
type AdminNotifier interface {
	Alert(message string)
}

type NopNotifier struct{}

func (NopNotifier) Alert(string) {}

type BotNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewAdminNotifier returns a NopNotifier when the bot is not configured.
func NewAdminNotifier(token, chatID string) AdminNotifier {
	if token == "" || chatID == "" {
		return NopNotifier{}
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		zap.S().Warnf("[Telegram] bad admin chat id %q: %v", chatID, err)
		return NopNotifier{}
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		zap.S().Warnf("[Telegram] bot init failed: %v", err)
		return NopNotifier{}
	}
	return &BotNotifier{bot: bot, chatID: id}
}

func (n *BotNotifier) Alert(message string) {
	msg := tgbotapi.NewMessage(n.chatID, EscapeMessage(message))
	msg.ParseMode = "markdown"
	if _, err := n.bot.Send(msg); err != nil {
		zap.S().Warnf("[Telegram] alert not sent: %v", err)
	}
}

type Stats struct {
	Users       int64
	PaidCompany int64
	Clothes     int64
	Analyzed    int64
	Outfits     int64
	Generations int64
	Failed      int64
}

func CollectStats(db *gorm.DB) (Stats, error) {
	var s Stats
	counts := []struct {
		query *gorm.DB
		into  *int64
	}{
		{db.Model(&models.UserAccount{}), &s.Users},
		{db.Model(&models.Company{}).Where("subscription <> ?", models.Free), &s.PaidCompany},
		{db.Model(&models.Clothing{}), &s.Clothes},
		{db.Model(&models.Clothing{}).Where("ai_analyzed = true"), &s.Analyzed},
		{db.Model(&models.Outfit{}), &s.Outfits},
		{db.Model(&models.OutfitGeneration{}), &s.Generations},
		{db.Model(&models.OutfitGeneration{}).Where("status = ?", models.GenerationFailed), &s.Failed},
	}
	for _, c := range counts {
		if err := c.query.Count(c.into).Error; err != nil {
			return s, err
		}
	}
	return s, nil
}

func FormatStats(s Stats) string {
	return fmt.Sprintf("```\nusers:        %d\npaid:         %d\nclothes:      %d (analyzed %d)\noutfits:      %d\nai requests:  %d (failed %d)\n```",
		s.Users, s.PaidCompany, s.Clothes, s.Analyzed, s.Outfits, s.Generations, s.Failed)
}

// RunAdminBot answers /stats for the usernames listed in admins until ctx ends.
func RunAdminBot(ctx context.Context, token string, admins []string, db *gorm.DB) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram: bot init: %w", err)
	}
	zap.S().Infof("[Telegram] authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.From == nil || !slices.Contains(admins, update.Message.From.UserName) {
				continue
			}

			reply := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			reply.ParseMode = "markdown"
			switch update.Message.Command() {
			case "stats":
				stats, err := CollectStats(db)
				if err != nil {
					reply.Text = EscapeMessage(err.Error())
				} else {
					reply.Text = FormatStats(stats)
				}
			default:
				reply.Text = "Commands: /stats"
			}
			if _, err := bot.Send(reply); err != nil {
				zap.S().Warnf("[Telegram] reply failed: %v", err)
			}
		}
	}
}
