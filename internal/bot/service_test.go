package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/classify"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
	"github.com/kimdat546/bot-than-giu-cua/internal/ledger"
)

type sentMessage struct {
	chatID int64
	text   string
}

// mockSender records outgoing messages.
type mockSender struct {
	sent []sentMessage
}

func (m *mockSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

// mockClassifier returns canned results.
type mockClassifier struct {
	guess    classify.Guess
	guessErr error
	email    *classify.EmailResult
}

func (m *mockClassifier) Categorize(ctx context.Context, description string, amount decimal.Decimal) (classify.Guess, error) {
	return m.guess, m.guessErr
}

func (m *mockClassifier) ParseStatement(ctx context.Context, text string) ([]classify.Line, error) {
	return nil, nil
}

func (m *mockClassifier) ParseEmail(ctx context.Context, subject, body string) (*classify.EmailResult, error) {
	return m.email, nil
}

// mockStore is an in-memory domain.Store.
type mockStore struct {
	rows     []*domain.Record
	settings map[string]string
	cats     []domain.Category
}

func (m *mockStore) Append(ctx context.Context, rec *domain.Record) error {
	m.rows = append(m.rows, rec)
	return nil
}

func (m *mockStore) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}

func (m *mockStore) Setting(ctx context.Context, name string) (string, error) {
	if v, ok := m.settings[name]; ok {
		return v, nil
	}
	return "", domain.ErrSettingNotFound
}

func (m *mockStore) Categories(ctx context.Context) ([]domain.Category, error) {
	return m.cats, nil
}

func testService(store *mockStore, classifier *mockClassifier) (*Service, *mockSender) {
	sender := &mockSender{}
	book := ledger.New(store, classifier, zerolog.Nop())
	svc := NewService(book, classifier, sender, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc, sender
}

func update(chatID int64, text string) *Update {
	return &Update{
		UpdateID: 1,
		Message: &Message{
			Text: text,
			Chat: Chat{ID: chatID},
		},
	}
}

func lastMessage(t *testing.T, sender *mockSender) sentMessage {
	t.Helper()
	if len(sender.sent) == 0 {
		t.Fatal("no message sent")
	}
	return sender.sent[len(sender.sent)-1]
}

func TestHandleUpdate_Start(t *testing.T) {
	svc, sender := testService(&mockStore{}, &mockClassifier{})

	if err := svc.HandleUpdate(context.Background(), update(7, "/start")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	msg := lastMessage(t, sender)
	if msg.chatID != 7 {
		t.Errorf("chatID = %d, want 7", msg.chatID)
	}
	if !strings.Contains(msg.text, "/add") {
		t.Errorf("start text missing command list: %q", msg.text)
	}
}

func TestHandleUpdate_AddUsage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no args", "/add", "Usage: /add"},
		{"missing description", "/add 25.50", "Usage: /add"},
		{"bad amount", "/add abc Coffee", "valid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sender := testService(&mockStore{}, &mockClassifier{})

			if err := svc.HandleUpdate(context.Background(), update(7, tt.text)); err != nil {
				t.Fatalf("HandleUpdate failed: %v", err)
			}
			msg := lastMessage(t, sender)
			if !strings.Contains(msg.text, tt.want) {
				t.Errorf("reply %q does not contain %q", msg.text, tt.want)
			}
		})
	}
}

func TestHandleUpdate_AddRecordsTransaction(t *testing.T) {
	store := &mockStore{}
	classifier := &mockClassifier{guess: classify.Guess{Category: "Food", Tags: []string{"coffee"}, Kind: domain.KindExpense}}
	svc, sender := testService(store, classifier)

	if err := svc.HandleUpdate(context.Background(), update(7, "/add -25.50 Coffee at Starbucks")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("store has %d rows, want 1", len(store.rows))
	}
	rec := store.rows[0]
	if rec.Description != "Coffee at Starbucks" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Category != "Food" {
		t.Errorf("Category = %q, want Food", rec.Category)
	}
	if rec.Source != domain.SourceManual {
		t.Errorf("Source = %q, want manual", rec.Source)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.text, "Transaction added") {
		t.Errorf("reply = %q", msg.text)
	}
	if !strings.Contains(msg.text, "Food") {
		t.Errorf("reply missing category: %q", msg.text)
	}
}

func TestHandleUpdate_QuickText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantStored int
	}{
		{"quick expense", "-25.50 Coffee", 1},
		{"quick income", "100 Salary", 1},
		{"plain chatter ignored", "hello bot", 0},
		{"amount only ignored", "25.50", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc, _ := testService(store, &mockClassifier{guess: classify.Guess{Category: "Other", Kind: domain.KindIncome}})

			if err := svc.HandleUpdate(context.Background(), update(7, tt.text)); err != nil {
				t.Fatalf("HandleUpdate failed: %v", err)
			}
			if len(store.rows) != tt.wantStored {
				t.Errorf("stored %d rows, want %d", len(store.rows), tt.wantStored)
			}
		})
	}
}

func TestHandleUpdate_RefundLinksPurchase(t *testing.T) {
	// The reconciler dates the refund "today", so the purchase must sit
	// inside the trailing window relative to the real clock.
	store := &mockStore{rows: []*domain.Record{
		{
			ID:          "p1",
			Date:        civil.DateOf(time.Now()).AddDays(-5),
			Amount:      decimal.NewFromFloat(-25.50),
			Description: "Coffee at Starbucks",
			Category:    "Food",
			Kind:        domain.KindExpense,
			Account:     domain.DefaultAccount,
		},
	}}
	svc, sender := testService(store, &mockClassifier{})

	if err := svc.HandleUpdate(context.Background(), update(7, "/refund 25.50 starbucks")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("store has %d rows, want 2", len(store.rows))
	}
	refund := store.rows[1]
	if refund.OriginalID != "p1" {
		t.Errorf("OriginalID = %q, want p1", refund.OriginalID)
	}
	if refund.Category != "Food" {
		t.Errorf("Category = %q, want inherited Food", refund.Category)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.text, "Linked to the original purchase") {
		t.Errorf("reply = %q", msg.text)
	}
}

func TestHandleUpdate_Balance(t *testing.T) {
	store := &mockStore{rows: []*domain.Record{
		{Date: civil.Date{Year: 2024, Month: time.March, Day: 1}, Amount: decimal.NewFromInt(-30)},
		{Date: civil.Date{Year: 2024, Month: time.March, Day: 2}, Amount: decimal.NewFromInt(5)},
	}}
	svc, sender := testService(store, &mockClassifier{})

	if err := svc.HandleUpdate(context.Background(), update(7, "/balance")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.text, "-25.00") {
		t.Errorf("balance reply = %q, want it to contain -25.00", msg.text)
	}
	if !strings.Contains(msg.text, "March 2024") {
		t.Errorf("balance reply missing month: %q", msg.text)
	}
}

func TestHandleUpdate_EmptyUpdate(t *testing.T) {
	svc, sender := testService(&mockStore{}, &mockClassifier{})

	if err := svc.HandleUpdate(context.Background(), nil); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if err := svc.HandleUpdate(context.Background(), &Update{}); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(sender.sent))
	}
}

func TestHandleEmail_RecordsAndNotifies(t *testing.T) {
	store := &mockStore{settings: map[string]string{"telegram_user_id": "42"}}
	classifier := &mockClassifier{
		guess: classify.Guess{Category: "Subscriptions", Kind: domain.KindExpense},
		email: &classify.EmailResult{
			Amount:      decimal.NewFromFloat(-49.99),
			Description: "ACME Subscription",
			Date:        civil.Date{Year: 2024, Month: time.March, Day: 10},
			Kind:        domain.KindExpense,
		},
	}
	svc, sender := testService(store, classifier)

	if err := svc.HandleEmail(context.Background(), "Payment receipt", "You paid 49.99", "bank@example.com"); err != nil {
		t.Fatalf("HandleEmail failed: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("store has %d rows, want 1", len(store.rows))
	}
	rec := store.rows[0]
	if rec.Source != domain.SourceEmail {
		t.Errorf("Source = %q, want email", rec.Source)
	}
	if rec.Account != "email_parsed" {
		t.Errorf("Account = %q, want email_parsed", rec.Account)
	}

	msg := lastMessage(t, sender)
	if msg.chatID != 42 {
		t.Errorf("notified chat %d, want 42", msg.chatID)
	}
	if !strings.Contains(msg.text, "bank@example.com") {
		t.Errorf("notification missing sender: %q", msg.text)
	}
}

func TestHandleEmail_NoTransactionFound(t *testing.T) {
	store := &mockStore{}
	svc, sender := testService(store, &mockClassifier{email: nil})

	if err := svc.HandleEmail(context.Background(), "Newsletter", "Nothing here", "news@example.com"); err != nil {
		t.Fatalf("HandleEmail failed: %v", err)
	}
	if len(store.rows) != 0 || len(sender.sent) != 0 {
		t.Errorf("no-op email produced side effects: rows=%d sent=%d", len(store.rows), len(sender.sent))
	}
}

func TestHandleEmail_NoNotifySetting(t *testing.T) {
	store := &mockStore{} // no telegram_user_id
	classifier := &mockClassifier{
		guess: classify.Guess{Category: "Other", Kind: domain.KindExpense},
		email: &classify.EmailResult{
			Amount:      decimal.NewFromFloat(-10),
			Description: "Charge",
		},
	}
	svc, sender := testService(store, classifier)

	if err := svc.HandleEmail(context.Background(), "Receipt", "body", "bank@example.com"); err != nil {
		t.Fatalf("HandleEmail failed: %v", err)
	}

	if len(store.rows) != 1 {
		t.Errorf("store has %d rows, want 1 (record even without notify target)", len(store.rows))
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(sender.sent))
	}
}

func TestNotifyImportResult(t *testing.T) {
	svc, sender := testService(&mockStore{}, &mockClassifier{})

	if err := svc.NotifyImportResult(context.Background(), 0, 3, 1, "visa"); err != nil {
		t.Fatalf("NotifyImportResult failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("chat 0 should not be notified")
	}

	if err := svc.NotifyImportResult(context.Background(), 9, 3, 1, "visa"); err != nil {
		t.Fatalf("NotifyImportResult failed: %v", err)
	}
	msg := lastMessage(t, sender)
	if !strings.Contains(msg.text, "Imported: 3") || !strings.Contains(msg.text, "Rejected: 1") {
		t.Errorf("reply = %q", msg.text)
	}
}
