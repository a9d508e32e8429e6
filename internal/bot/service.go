package bot

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/ledger"
)

// notifySettingName is the Settings entry holding the chat to notify
// about transactions detected outside of chat (e.g. bank emails).
const notifySettingName = "telegram_user_id"

// quickTextRe matches the shorthand "25.50 Coffee" transaction format.
var quickTextRe = regexp.MustCompile(`^(-?\d+(?:\.\d{1,2})?)\s+(.+)$`)

// Service routes incoming chat updates to ledger operations and renders
// the results.
type Service struct {
	ledger     *ledger.Ledger
	classifier classify.Classifier
	sender     Sender
	log        zerolog.Logger
	now        func() time.Time
}

// NewService creates a bot service with explicit dependencies.
func NewService(l *ledger.Ledger, classifier classify.Classifier, sender Sender, log zerolog.Logger) *Service {
	return &Service{
		ledger:     l,
		classifier: classifier,
		sender:     sender,
		log:        log,
		now:        time.Now,
	}
}

// HandleUpdate processes one Telegram update.
func (s *Service) HandleUpdate(ctx context.Context, update *Update) error {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	var err error
	switch {
	case strings.HasPrefix(text, "/start"):
		err = s.reply(ctx, chatID, startText)
	case strings.HasPrefix(text, "/add"):
		err = s.handleAdd(ctx, chatID, text)
	case strings.HasPrefix(text, "/balance"):
		err = s.handleBalance(ctx, chatID)
	case strings.HasPrefix(text, "/report"):
		err = s.handleReport(ctx, chatID)
	case strings.HasPrefix(text, "/categories"):
		err = s.handleCategories(ctx, chatID)
	case strings.HasPrefix(text, "/refund"):
		err = s.handleRefund(ctx, chatID, text)
	case strings.HasPrefix(text, "/ccreport"):
		err = s.handleCardReport(ctx, chatID)
	case strings.HasPrefix(text, "/help"):
		err = s.reply(ctx, chatID, helpText)
	default:
		err = s.handleQuickText(ctx, chatID, text)
	}

	if err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("update handling failed")
		return s.reply(ctx, chatID, "Sorry, something went wrong. Please try again.")
	}
	return nil
}

func (s *Service) handleAdd(ctx context.Context, chatID int64, text string) error {
	parts := strings.Fields(text)[1:]
	if len(parts) < 2 {
		return s.reply(ctx, chatID, "Usage: /add [amount] [description]\nExample: /add 25.50 Coffee at Starbucks")
	}

	amount, err := decimal.NewFromString(parts[0])
	if err != nil {
		return s.reply(ctx, chatID, "Please provide a valid amount.")
	}
	description := strings.Join(parts[1:], " ")

	return s.addManual(ctx, chatID, amount, description)
}

// handleQuickText tries to read free text as "25.50 Coffee"; anything
// else is silently ignored, matching chat etiquette.
func (s *Service) handleQuickText(ctx context.Context, chatID int64, text string) error {
	m := quickTextRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return s.addManual(ctx, chatID, amount, m[2])
}

func (s *Service) addManual(ctx context.Context, chatID int64, amount decimal.Decimal, description string) error {
	rec, err := s.ledger.AddManual(ctx, ledger.ManualInput{
		Amount:      amount,
		Description: description,
		Source:      domain.SourceManual,
	})
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatRecordAdded(rec))
}

func (s *Service) handleRefund(ctx context.Context, chatID int64, text string) error {
	parts := strings.Fields(text)[1:]
	if len(parts) < 2 {
		return s.reply(ctx, chatID, "Usage: /refund [amount] [description]\nExample: /refund 25.50 Starbucks refund")
	}

	amount, err := decimal.NewFromString(parts[0])
	if err != nil {
		return s.reply(ctx, chatID, "Please provide a valid amount.")
	}
	description := strings.Join(parts[1:], " ")

	rec, err := s.ledger.AddRefund(ctx, ledger.RefundInput{
		Amount:      amount,
		Description: description,
		Account:     domain.DefaultAccount,
		Source:      domain.SourceCreditCard,
	})
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatRefundAdded(rec))
}

func (s *Service) handleBalance(ctx context.Context, chatID int64) error {
	now := s.now()
	balance, err := s.ledger.Balance(ctx, now.Year(), now.Month())
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatBalance(now, balance))
}

func (s *Service) handleReport(ctx context.Context, chatID int64) error {
	now := s.now()
	summary, err := s.ledger.Report(ctx, now.Year(), now.Month())
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatReport(now, summary))
}

func (s *Service) handleCardReport(ctx context.Context, chatID int64) error {
	now := s.now()
	start := civil.Date{Year: now.Year(), Month: now.Month(), Day: 1}
	end := start.AddDays(daysIn(now.Year(), now.Month()) - 1)

	summary, err := s.ledger.CardReport(ctx, domain.DefaultAccount, start, end)
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatCardReport(now, summary))
}

func (s *Service) handleCategories(ctx context.Context, chatID int64) error {
	cats, err := s.ledger.Categories(ctx)
	if err != nil {
		return err
	}
	return s.reply(ctx, chatID, formatCategories(cats))
}

// HandleEmail processes a parsed-email webhook: extract a transaction,
// record it, and notify the configured chat if one is set.
func (s *Service) HandleEmail(ctx context.Context, subject, body, from string) error {
	parsed, err := s.classifier.ParseEmail(ctx, subject, body)
	if err != nil || parsed == nil {
		return err
	}

	account := parsed.Account
	if account == "" {
		account = "email_parsed"
	}

	rec, err := s.ledger.AddManual(ctx, ledger.ManualInput{
		Amount:      parsed.Amount,
		Description: parsed.Description,
		Date:        parsed.Date,
		Account:     account,
		Source:      domain.SourceEmail,
	})
	if err != nil {
		return err
	}

	chatID, err := s.notifyChatID(ctx)
	if err != nil {
		return err
	}
	if chatID == 0 {
		return nil // nobody to notify; not an error
	}
	return s.reply(ctx, chatID, formatEmailDetected(rec, from))
}

// NotifyImportResult tells a chat how a statement import went.
func (s *Service) NotifyImportResult(ctx context.Context, chatID int64, imported, rejected int, account string) error {
	if chatID == 0 {
		return nil
	}
	return s.reply(ctx, chatID, formatImportResult(imported, rejected, account))
}

func (s *Service) notifyChatID(ctx context.Context) (int64, error) {
	val, err := s.ledger.Setting(ctx, notifySettingName)
	if errors.Is(err, domain.ErrSettingNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		s.log.Warn().Str("value", val).Msg("telegram_user_id setting is not a chat id")
		return 0, nil
	}
	return chatID, nil
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	return s.sender.SendMessage(ctx, chatID, text)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
