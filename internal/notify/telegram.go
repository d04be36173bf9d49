// Package notify delivers manager notices and report workbooks over Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the part of the bot API used here.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type notice struct {
	kind string
	text string
}

// Telegram sends messages and documents to every manager chat.
// Event notices are queued and delivered by Run so publishers never wait on the network.
type Telegram struct {
	sender   TelegramSender
	managers []int64
	queue    chan notice
	logger   *zerolog.Logger
}

// NewTelegram connects to the bot API with token.
func NewTelegram(token string, debug bool, managers []int64, logger *zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot api: %w", err)
	}
	api.Debug = debug
	return NewTelegramWithSender(api, managers, logger), nil
}

// NewTelegramWithSender allows injecting a mocked sender for tests.
func NewTelegramWithSender(sender TelegramSender, managers []int64, logger *zerolog.Logger) *Telegram {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "telegram").Logger()
	return &Telegram{
		sender:   sender,
		managers: append([]int64(nil), managers...),
		queue:    make(chan notice, 256),
		logger:   &l,
	}
}

// Subscribe queues a notice for new bookings and completed stays.
func (t *Telegram) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.BookingCreated, func(ev events.Event) error {
		var b models.Booking
		if err := ev.Decode(&b); err != nil {
			return err
		}
		t.enqueue(notice{kind: "booking_created", text: FormatBookingCreated(b)})
		return nil
	})
	bus.Subscribe(events.InvoiceCreated, func(ev events.Event) error {
		var inv models.Invoice
		if err := ev.Decode(&inv); err != nil {
			return err
		}
		t.enqueue(notice{kind: "checked_out", text: FormatCheckedOut(inv)})
		return nil
	})
}

func (t *Telegram) enqueue(n notice) {
	select {
	case t.queue <- n:
	default:
		metrics.IncNotification(n.kind, "dropped")
		t.logger.Warn().Str("kind", n.kind).Msg("notification queue full, dropping")
	}
}

// Run delivers queued notices until ctx is done.
func (t *Telegram) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-t.queue:
			result := "ok"
			if err := t.SendText(ctx, n.text); err != nil {
				result = "error"
				t.logger.Error().Err(err).Str("kind", n.kind).Msg("send notice")
			}
			metrics.IncNotification(n.kind, result)
		}
	}
}

// SendText sends text to every manager. It returns the joined errors of failed chats.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range t.managers {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.sender.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// SendDocument sends a file to every manager.
func (t *Telegram) SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var errs []error
	for _, chatID := range t.managers {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: content})
		doc.Caption = caption
		if _, err := t.sender.Send(doc); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	result := "ok"
	if len(errs) > 0 {
		result = "error"
	}
	metrics.IncNotification("document", result)
	return errors.Join(errs...)
}

func FormatBookingCreated(b models.Booking) string {
	rooms := make([]string, len(b.RoomNumbers))
	for i, n := range b.RoomNumbers {
		rooms[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("🆕 Booking #%d\nGuest: %d\nRooms: %s\n%s → %s",
		b.ID, b.GuestID, strings.Join(rooms, ", "),
		b.CheckIn.Format("02.01.2006 15:04"), b.CheckOut.Format("02.01.2006 15:04"))
}

func FormatCheckedOut(inv models.Invoice) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 Booking #%d checked out, invoice #%d\n", inv.BookingID, inv.ID)
	for _, item := range inv.Items {
		fmt.Fprintf(&sb, "• %s: %s\n", item.Description, item.Amount.StringFixed(2))
	}
	fmt.Fprintf(&sb, "Total: %s", inv.Total().StringFixed(2))
	return sb.String()
}
